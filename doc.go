// Package veloxext holds the errors shared by the velox contrib extensions.
//
// The extensions themselves live in sub-packages:
//
//   - contrib/admin: the foreign-key autocomplete search widget and its endpoint
//   - contrib/admin/sqlstore: database-backed lookups for the widget
//   - management/sqlcreate: SQL to provision the configured databases
//   - settings: the YAML settings file (database aliases, admin models)
//   - dialect: engine classification and the SQL driver wrapper
package veloxext
