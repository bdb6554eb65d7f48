// Package history persists an audit trail of pipeline runs to a JSON file.
// Every clean→build→publish run appends one record, capped to the most
// recent hundred builds.
package history
