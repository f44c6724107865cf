package services

import (
	"os"
	"path/filepath"
	"testing"

	"airquality-dashboard/utils"
)

const prsaHeader = "No,year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,PRES,DEWP,RAIN,wd,WSPM,station\n"

// sampleCSV is a slice of the Guanyuan station file, with one missing PM2.5
// reading on the second row.
const sampleCSV = prsaHeader +
	"1,2013,3,1,0,4,4,4,7,300,77,-0.7,1023,-18.8,0,NNW,4.4,Guanyuan\n" +
	"2,2013,3,1,8,NA,8,4,7,300,77,-1.1,1023.2,-18.2,0,N,4.7,Guanyuan\n" +
	"3,2013,6,1,18,3,3,5,10,300,73,-1.1,1023.5,-18.2,0,NNW,5.6,Guanyuan\n" +
	"4,2013,12,1,12,40,60,11,11,300,72,-1.4,1024.5,-19.4,0,NW,3.1,Guanyuan\n" +
	"5,2014,1,15,7,100,120,12,12,300,72,-2,1025.2,-19.5,0,N,2,Guanyuan\n"

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
