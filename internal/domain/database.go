package domain

import "fmt"

// SinkDriver represents the type of database engine an export can be written to.
type SinkDriver string

const (
	SinkDriverMySQL    SinkDriver = "mysql"
	SinkDriverPostgres SinkDriver = "postgres"
	SinkDriverMongoDB  SinkDriver = "mongodb"
	SinkDriverSQLite   SinkDriver = "sqlite"
)

// ParseSinkDriver validates a driver name from configuration.
func ParseSinkDriver(s string) (SinkDriver, error) {
	switch d := SinkDriver(s); d {
	case SinkDriverMySQL, SinkDriverPostgres, SinkDriverMongoDB, SinkDriverSQLite:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported sink driver %q", s)
	}
}

// SinkConnection holds the metadata for connecting to an external database.
// The password is stored separately in the SecretStore.
type SinkConnection struct {
	Name     string            `json:"name" yaml:"name"`
	Driver   SinkDriver        `json:"driver" yaml:"driver"`
	Host     string            `json:"host" yaml:"host"`         // hostname, URI (mongodb) or file path (sqlite)
	Port     int               `json:"port" yaml:"port"`         // 0 for sqlite
	Database string            `json:"database" yaml:"database"` // db name or empty for sqlite
	Username string            `json:"username" yaml:"username"`
	SSLMode  string            `json:"sslMode" yaml:"ssl_mode"`
	Extra    map[string]string `json:"extra,omitempty" yaml:"extra"` // driver-specific options
}

// SecretKey is the key under which the sink's password is stored.
func (c *SinkConnection) SecretKey() string {
	return "sink:" + c.Name
}
