package service

// ExportedRunGuard lets the service_test package drive the run guard.
type ExportedRunGuard = runGuard
