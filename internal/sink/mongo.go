package sink

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"sanitycsv/internal/domain"
	"sanitycsv/internal/export"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// insertBatchSize bounds a single InsertMany call.
const insertBatchSize = 500

// mongoConnector implements Connector for MongoDB.
type mongoConnector struct {
	client *mongo.Client
	dbName string
}

// buildMongoURI returns the connection URI and database name for a sink.
// A host that is already a mongodb:// or mongodb+srv:// URI is used as is,
// with <password> placeholders filled in.
func buildMongoURI(conn *domain.SinkConnection, password string) (string, string) {
	dbName := conn.Database

	if strings.HasPrefix(conn.Host, "mongodb+srv://") || strings.HasPrefix(conn.Host, "mongodb://") {
		uri := conn.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", url.QueryEscape(password))
			uri = strings.ReplaceAll(uri, "<db_password>", url.QueryEscape(password))
		}
		if dbName == "" {
			dbName = databaseFromURI(uri)
		}
		return uri, dbName
	}

	port := conn.Port
	if port == 0 {
		port = 27017
	}
	u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%d", conn.Host, port)}
	if conn.Username != "" {
		u.User = url.UserPassword(conn.Username, password)
	}
	if len(conn.Extra) > 0 {
		keys := make([]string, 0, len(conn.Extra))
		for k := range conn.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		q := url.Values{}
		for _, k := range keys {
			q.Set(k, conn.Extra[k])
		}
		u.Path = "/"
		u.RawQuery = q.Encode()
	}
	if dbName == "" {
		dbName = "test"
	}
	return u.String(), dbName
}

// databaseFromURI extracts the path database of user:pass@host/DB?params.
func databaseFromURI(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		rest = strings.TrimPrefix(rest, prefix)
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return "test"
	}
	path, _, _ = strings.Cut(path, "?")
	if path == "" {
		return "test"
	}
	return path
}

func newMongoConnector(conn *domain.SinkConnection, password string) (*mongoConnector, error) {
	uri, dbName := buildMongoURI(conn, password)

	logURI := uri
	if password != "" {
		logURI = strings.ReplaceAll(logURI, url.QueryEscape(password), "***")
		logURI = strings.ReplaceAll(logURI, password, "***")
	}
	log.Printf("[MONGO] Connecting with URI: %s (database %s)", logURI, dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoConnector{client: client, dbName: dbName}, nil
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

// WriteTable inserts one document per row into the collection named table.
// Field order is kept; empty cells are stored as null.
func (m *mongoConnector) WriteTable(ctx context.Context, table string, fields []string, rows []export.Record, mode WriteMode) (int, error) {
	if table == "" {
		return 0, fmt.Errorf("collection name is required")
	}
	if len(fields) == 0 {
		return 0, export.ErrNoFieldsSelected
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	coll := m.client.Database(m.dbName).Collection(table)
	if mode == WriteReplace {
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return 0, fmt.Errorf("clear collection: %w", err)
		}
	}

	docs := rowDocuments(fields, rows)
	written := 0
	for start := 0; start < len(docs); start += insertBatchSize {
		end := min(start+insertBatchSize, len(docs))
		res, err := coll.InsertMany(ctx, docs[start:end])
		if err != nil {
			return written, fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
		written += len(res.InsertedIDs)
	}
	log.Printf("[MONGO] wrote %d document(s) to %s.%s", written, m.dbName, table)
	return written, nil
}

// rowDocuments converts rows to ordered BSON documents.
func rowDocuments(fields []string, rows []export.Record) []bson.D {
	docs := make([]bson.D, len(rows))
	for i, row := range rows {
		doc := make(bson.D, 0, len(fields))
		for _, f := range fields {
			doc = append(doc, bson.E{Key: f, Value: row[f]})
		}
		docs[i] = doc
	}
	return docs
}

func (m *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
