// Package services implements the timesheet operations on top of the
// repositories: credentials, preferences, timesheet submission and the
// audit trail. Every operation other than login acts on behalf of an
// explicit *sessions.Session.
package services
