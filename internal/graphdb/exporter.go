// Package graphdb esporta il call graph Python in Neo4j.
package graphdb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// DefaultBatchSize bounds the rows sent in a single UNWIND.
const DefaultBatchSize = 500

// runFunc esegue una singola query Cypher.
type runFunc func(ctx context.Context, cypher string, params map[string]any) error

// Config contiene i parametri di connessione.
type Config struct {
	URI       string
	User      string
	Password  string
	Database  string
	BatchSize int
	Logger    *slog.Logger
}

// Exporter carica dichiarazioni e chiamate in Neo4j con query UNWIND batch.
type Exporter struct {
	driver    neo4j.DriverWithContext
	run       runFunc
	batchSize int
	log       *slog.Logger
}

// NewExporter connects to Neo4j and verifies connectivity.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect neo4j: %w", err)
	}

	var opts []neo4j.ExecuteQueryConfigurationOption
	if cfg.Database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(cfg.Database))
	}
	run := func(ctx context.Context, cypher string, params map[string]any) error {
		_, err := neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer, opts...)
		return err
	}
	e := newExporter(run, cfg.BatchSize, cfg.Logger)
	e.driver = driver
	return e, nil
}

func newExporter(run runFunc, batchSize int, logger *slog.Logger) *Exporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{run: run, batchSize: batchSize, log: logger}
}

// Close rilascia il driver.
func (e *Exporter) Close(ctx context.Context) error {
	if e.driver == nil {
		return nil
	}
	return e.driver.Close(ctx)
}

// CreateIndexes ensures the lookup indexes exist.
func (e *Exporter) CreateIndexes(ctx context.Context) error {
	e.log.Debug("creating neo4j indexes")
	indexes := []string{
		"CREATE INDEX py_module_name IF NOT EXISTS FOR (n:PyModule) ON (n.name)",
		"CREATE INDEX py_decl_key IF NOT EXISTS FOR (n:PyDecl) ON (n.module, n.name)",
	}
	for _, q := range indexes {
		if err := e.run(ctx, q, nil); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Clean rimuove tutti i nodi e le relazioni di un modulo.
func (e *Exporter) Clean(ctx context.Context, module string) error {
	e.log.Debug("cleaning neo4j module", "module", module)
	queries := []string{
		"MATCH (n:PyDecl {module: $module}) DETACH DELETE n",
		"MATCH (m:PyModule {name: $module}) DETACH DELETE m",
	}
	for _, q := range queries {
		if err := e.run(ctx, q, map[string]any{"module": module}); err != nil {
			return fmt.Errorf("clean %s: %w", module, err)
		}
	}
	return nil
}

// Export upserts the module node, its declarations and call edges under
// the given module key. An empty key falls back to the analysis module name.
func (e *Exporter) Export(ctx context.Context, module string, a *schema.Analysis) error {
	if module == "" {
		module = a.Metadata.Module
	}
	if module == "" {
		return fmt.Errorf("analysis has no module name")
	}
	if err := e.run(ctx,
		`MERGE (m:PyModule {name: $module})
		 SET m.source_path = $path, m.status = $status`,
		map[string]any{"module": module, "path": a.Metadata.SourcePath, "status": a.Status},
	); err != nil {
		return fmt.Errorf("load module: %w", err)
	}

	decls := DeclRows(a)
	e.log.Info("exporting declarations", "module", module, "count", len(decls))
	if err := e.batched(ctx,
		`UNWIND $batch AS row
		 MERGE (n:PyDecl {module: $module, name: row.name})
		 SET n.kind = row.kind, n.line = row.line, n.tags = row.tags,
		     n.entry = row.entry, n.leaf = row.leaf
		 WITH n
		 MATCH (m:PyModule {name: $module})
		 MERGE (n)-[:IN_MODULE]->(m)`,
		module, decls); err != nil {
		return fmt.Errorf("load declarations: %w", err)
	}

	if methods := MethodRows(a); len(methods) > 0 {
		if err := e.batched(ctx,
			`UNWIND $batch AS row
			 MATCH (c:PyDecl {module: $module, name: row.class}),
			       (f:PyDecl {module: $module, name: row.method})
			 MERGE (c)-[:HAS_METHOD]->(f)`,
			module, methods); err != nil {
			return fmt.Errorf("load methods: %w", err)
		}
	}

	calls := CallRows(a)
	e.log.Info("exporting call edges", "module", module, "count", len(calls))
	if err := e.batched(ctx,
		`UNWIND $batch AS row
		 MERGE (caller:PyDecl {module: $module, name: row.caller})
		 MERGE (callee:PyDecl {module: $module, name: row.callee})
		 MERGE (caller)-[r:CALLS]->(callee)
		 SET r.count = row.count`,
		module, calls); err != nil {
		return fmt.Errorf("load calls: %w", err)
	}
	return nil
}

func (e *Exporter) batched(ctx context.Context, cypher, module string, rows []map[string]any) error {
	for _, chunk := range Chunk(rows, e.batchSize) {
		if err := e.run(ctx, cypher, map[string]any{"module": module, "batch": chunk}); err != nil {
			return err
		}
	}
	return nil
}
