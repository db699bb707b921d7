// Package config loads settings for the timesheet terminal client:
// defaults, then an optional JSON file (-c / -config), then flags.
package config
