// Package cli is the interactive terminal front end of the timesheet
// client. It mirrors the tabs of the web form: timesheet entry, activity
// log and settings.
package cli
