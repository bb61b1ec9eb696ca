// Package sqlstore backs the admin widget and autocomplete endpoint with
// SQL tables.
//
//	drv, err := sqlstore.Open(cfg.Classifier(), db)
//	customers, err := sqlstore.New(drv, sqlstore.Model{Name: "Customer", Label: "name"})
//	ac.Register("shop", "Customer", customers, "name", "^email")
package sqlstore
