package storage

import "airquality-dashboard/models"

// TableWriter is the interface any export backend must satisfy.
type TableWriter interface {
	Write(t *models.Table) error
	Close() error
}
