/*
Package datasource contains the collaborator interfaces shared by fluentdb data sources.
A datasource refers to any component that provides access to data, the SQL database being
the one fluentdb ships with.
*/
package datasource

//go:generate mockgen -source=datasource.go -destination=mock_logger.go -package=datasource

// Logger is the logging surface a datasource needs. logging.Logger satisfies it.
type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Log(args ...any)
	Logf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
}
