package rpgstore

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no cgo

	"rpg/internal/rpgerrors"
	"rpg/internal/rpglog"
	"rpg/internal/rpgmodel"
)

const sqlSchemaVersion = 1

// SQLStore is the durable reference Store implementation, backed by
// modernc.org/sqlite. Modeled on the storage layer's WAL pragmas and
// WithTx transactional helper: every mutating operation runs inside a
// transaction so a failing step leaves no partial write.
type SQLStore struct {
	conn   *sql.DB
	logger *rpglog.Logger
}

// OpenSQLStore opens or creates a SQLite-backed store at repoRoot/path.
func OpenSQLStore(repoRoot, relPath string, logger *rpglog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = rpglog.NewLogger(rpglog.Config{Format: rpglog.HumanFormat, Level: rpglog.InfoLevel})
	}

	fullPath := filepath.Join(repoRoot, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, rpgerrors.StoreError("creating store directory", err)
	}

	conn, err := sql.Open("sqlite", fullPath)
	if err != nil {
		return nil, rpgerrors.StoreError("opening sqlite database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, rpgerrors.StoreError("setting pragma", err)
		}
	}

	s := &SQLStore{conn: conn, logger: logger}
	if err := s.initializeSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) withTx(fn func(*sql.Tx) error) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return rpgerrors.StoreError("beginning transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", map[string]interface{}{"error": rbErr.Error()})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return rpgerrors.StoreError("committing transaction", err)
	}
	return nil
}

func (s *SQLStore) initializeSchema() error {
	return s.withTx(func(tx *sql.Tx) error {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`,
			`CREATE TABLE IF NOT EXISTS nodes (
				id TEXT PRIMARY KEY,
				node_type TEXT NOT NULL,
				description TEXT NOT NULL,
				keywords TEXT NOT NULL,
				intent TEXT NOT NULL DEFAULT '',
				directory_path TEXT NOT NULL DEFAULT '',
				file_path TEXT NOT NULL DEFAULT '',
				metadata_directory_path TEXT NOT NULL DEFAULT '',
				entity_kind TEXT NOT NULL DEFAULT '',
				qualified_name TEXT NOT NULL DEFAULT '',
				start_line INTEGER NOT NULL DEFAULT 0,
				end_line INTEGER NOT NULL DEFAULT 0,
				scip_symbol TEXT NOT NULL DEFAULT '',
				source_text TEXT NOT NULL DEFAULT '',
				has_source_text INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS edges (
				source TEXT NOT NULL,
				target TEXT NOT NULL,
				edge_type TEXT NOT NULL,
				level INTEGER,
				sibling_order INTEGER,
				dependency_type TEXT NOT NULL DEFAULT '',
				is_runtime INTEGER,
				source_line INTEGER,
				PRIMARY KEY (source, target, edge_type, dependency_type)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source)`,
			`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(stmt); err != nil {
				return rpgerrors.StoreError("applying schema", err)
			}
		}

		var count int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
			return rpgerrors.StoreError("reading schema version", err)
		}
		if count == 0 {
			if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES (?)`, sqlSchemaVersion); err != nil {
				return rpgerrors.StoreError("writing schema version", err)
			}
		}
		return nil
	})
}

func nodeToRow(n rpgmodel.Node) (description, keywords, intent string) {
	description = n.Feature.Description()
	data, _ := jsonMarshalStrings(n.Feature.Keywords())
	keywords = data
	if tag, ok := n.Feature.Intent(); ok {
		intent = string(tag)
	}
	return
}

func (s *SQLStore) AddNode(node rpgmodel.Node) error {
	return s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM nodes WHERE id = ?`, node.ID).Scan(&exists); err != nil {
			return rpgerrors.StoreError("checking node existence", err)
		}
		if exists > 0 {
			return rpgerrors.GraphInvariantError("duplicate node ID "+node.ID, nil)
		}
		return insertNode(tx, node)
	})
}

func insertNode(tx *sql.Tx, n rpgmodel.Node) error {
	description, keywords, intent := nodeToRow(n)
	hasSource := 0
	if n.HasSourceText() {
		hasSource = 1
	}
	_, err := tx.Exec(`INSERT OR REPLACE INTO nodes (
		id, node_type, description, keywords, intent, directory_path,
		file_path, metadata_directory_path, entity_kind, qualified_name,
		start_line, end_line, scip_symbol, source_text, has_source_text
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Type), description, keywords, intent, n.DirectoryPath,
		n.Metadata.FilePath, n.Metadata.DirectoryPath, string(n.Metadata.EntityKind), n.Metadata.QualifiedName,
		n.Metadata.StartLine, n.Metadata.EndLine, n.Metadata.ScipSymbol, n.SourceText, hasSource)
	if err != nil {
		return rpgerrors.StoreError("inserting node", err)
	}
	return nil
}

func (s *SQLStore) HasNode(id string) bool {
	var count int
	_ = s.conn.QueryRow(`SELECT COUNT(*) FROM nodes WHERE id = ?`, id).Scan(&count)
	return count > 0
}

func (s *SQLStore) GetNode(id string) (rpgmodel.Node, bool) {
	row := s.conn.QueryRow(`SELECT id, node_type, description, keywords, intent, directory_path,
		file_path, metadata_directory_path, entity_kind, qualified_name,
		start_line, end_line, scip_symbol, source_text, has_source_text
		FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if err != nil {
		return rpgmodel.Node{}, false
	}
	return n, true
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row rowScanner) (rpgmodel.Node, error) {
	var (
		id, nodeType, description, keywordsJSON, intent, directoryPath string
		filePath, metadataDirectory, entityKind, qualifiedName         string
		startLine, endLine                                             int
		scipSymbol, sourceText                                         string
		hasSourceInt                                                   int
	)
	if err := row.Scan(&id, &nodeType, &description, &keywordsJSON, &intent, &directoryPath,
		&filePath, &metadataDirectory, &entityKind, &qualifiedName,
		&startLine, &endLine, &scipSymbol, &sourceText, &hasSourceInt); err != nil {
		return rpgmodel.Node{}, err
	}
	keywords := jsonUnmarshalStrings(keywordsJSON)
	feature := rpgmodel.NewSemanticFeature(description, keywords, rpgmodel.IntentTag(intent))

	switch rpgmodel.NodeType(nodeType) {
	case rpgmodel.NodeHighLevel:
		return rpgmodel.NewHighLevelNode(id, feature, directoryPath), nil
	default:
		metadata := rpgmodel.StructuralMetadata{
			FilePath:      filePath,
			DirectoryPath: metadataDirectory,
			EntityKind:    rpgmodel.EntityKind(entityKind),
			QualifiedName: qualifiedName,
			StartLine:     startLine,
			EndLine:       endLine,
			ScipSymbol:    scipSymbol,
		}
		return rpgmodel.NewLowLevelNode(id, feature, metadata, sourceText, hasSourceInt != 0), nil
	}
}

func (s *SQLStore) UpdateNode(id string, node rpgmodel.Node) error {
	return s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM nodes WHERE id = ?`, id).Scan(&exists); err != nil {
			return rpgerrors.StoreError("checking node existence", err)
		}
		if exists == 0 {
			return rpgerrors.GraphInvariantError("update of nonexistent node "+id, nil)
		}
		node.ID = id
		return insertNode(tx, node)
	})
}

func (s *SQLStore) RemoveNode(id string) ([]rpgmodel.Edge, error) {
	var removed []rpgmodel.Edge
	err := s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM nodes WHERE id = ?`, id).Scan(&exists); err != nil {
			return rpgerrors.StoreError("checking node existence", err)
		}
		if exists == 0 {
			return rpgerrors.GraphInvariantError("removal of nonexistent node "+id, nil)
		}

		rows, err := tx.Query(`SELECT source, target, edge_type, level, sibling_order, dependency_type, is_runtime, source_line
			FROM edges WHERE source = ? OR target = ?`, id, id)
		if err != nil {
			return rpgerrors.StoreError("querying incident edges", err)
		}
		edges, err := scanEdges(rows)
		if err != nil {
			return err
		}
		removed = edges

		if _, err := tx.Exec(`DELETE FROM edges WHERE source = ? OR target = ?`, id, id); err != nil {
			return rpgerrors.StoreError("deleting incident edges", err)
		}
		if _, err := tx.Exec(`DELETE FROM nodes WHERE id = ?`, id); err != nil {
			return rpgerrors.StoreError("deleting node", err)
		}
		return nil
	})
	return removed, err
}

func (s *SQLStore) AddEdge(edge rpgmodel.Edge) error {
	return s.withTx(func(tx *sql.Tx) error {
		var sourceExists, targetExists int
		_ = tx.QueryRow(`SELECT COUNT(*) FROM nodes WHERE id = ?`, edge.Source).Scan(&sourceExists)
		_ = tx.QueryRow(`SELECT COUNT(*) FROM nodes WHERE id = ?`, edge.Target).Scan(&targetExists)
		if sourceExists == 0 {
			return rpgerrors.GraphInvariantError("edge source does not exist: "+edge.Source, nil)
		}
		if targetExists == 0 {
			return rpgerrors.GraphInvariantError("edge target does not exist: "+edge.Target, nil)
		}
		if edge.Source == edge.Target {
			return rpgerrors.GraphInvariantError("self-loop on "+edge.Source, nil)
		}

		if edge.Type == rpgmodel.EdgeFunctional {
			var parentCount int
			if err := tx.QueryRow(`SELECT COUNT(*) FROM edges WHERE target = ? AND edge_type = ?`,
				edge.Target, string(rpgmodel.EdgeFunctional)).Scan(&parentCount); err != nil {
				return rpgerrors.StoreError("checking existing parent", err)
			}
			if parentCount > 0 {
				return rpgerrors.GraphInvariantError("node "+edge.Target+" already has a parent", nil)
			}
			cycles, err := wouldCycleTx(tx, edge.Source, edge.Target)
			if err != nil {
				return err
			}
			if cycles {
				return rpgerrors.GraphInvariantError("functional edge would create a cycle", nil)
			}
		}
		if edge.Type == rpgmodel.EdgeDependency {
			var dupCount int
			if err := tx.QueryRow(`SELECT COUNT(*) FROM edges WHERE source = ? AND target = ? AND edge_type = ? AND dependency_type = ?`,
				edge.Source, edge.Target, string(rpgmodel.EdgeDependency), string(edge.DependencyType)).Scan(&dupCount); err != nil {
				return rpgerrors.StoreError("checking duplicate dependency edge", err)
			}
			if dupCount > 0 {
				return rpgerrors.GraphInvariantError("duplicate dependency edge "+edge.Key(), nil)
			}
		}

		var level, sibling, sourceLine sql.NullInt64
		var isRuntime sql.NullBool
		if edge.HasLevel() {
			level = sql.NullInt64{Int64: int64(edge.Level), Valid: true}
		}
		if edge.HasSiblingOrder() {
			sibling = sql.NullInt64{Int64: int64(edge.SiblingOrder), Valid: true}
		}
		if edge.HasIsRuntime() {
			isRuntime = sql.NullBool{Bool: edge.IsRuntime, Valid: true}
		}
		if edge.HasSourceLine() {
			sourceLine = sql.NullInt64{Int64: int64(edge.SourceLine), Valid: true}
		}

		_, err := tx.Exec(`INSERT INTO edges (source, target, edge_type, level, sibling_order, dependency_type, is_runtime, source_line)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			edge.Source, edge.Target, string(edge.Type), level, sibling, string(edge.DependencyType), isRuntime, sourceLine)
		if err != nil {
			return rpgerrors.StoreError("inserting edge", err)
		}
		return nil
	})
}

// wouldCycleTx reports whether adding a functional edge target<-source
// would put target (or one of its descendants) as an ancestor of source,
// i.e. create a cycle in the hierarchy forest. Mirrors MemoryStore's
// wouldCycleLocked by walking parent edges instead of an in-memory index.
func wouldCycleTx(tx *sql.Tx, source, target string) (bool, error) {
	current := source
	for {
		var parent string
		err := tx.QueryRow(`SELECT source FROM edges WHERE target = ? AND edge_type = ?`,
			current, string(rpgmodel.EdgeFunctional)).Scan(&parent)
		if err == sql.ErrNoRows {
			return false, nil
		}
		if err != nil {
			return false, rpgerrors.StoreError("walking ancestor chain", err)
		}
		if parent == target {
			return true, nil
		}
		current = parent
	}
}

func scanEdges(rows *sql.Rows) ([]rpgmodel.Edge, error) {
	defer rows.Close()
	var edges []rpgmodel.Edge
	for rows.Next() {
		var source, target, edgeType, depType string
		var level, sibling, sourceLine sql.NullInt64
		var isRuntime sql.NullBool
		if err := rows.Scan(&source, &target, &edgeType, &level, &sibling, &depType, &isRuntime, &sourceLine); err != nil {
			return nil, rpgerrors.StoreError("scanning edge row", err)
		}
		switch rpgmodel.EdgeType(edgeType) {
		case rpgmodel.EdgeFunctional:
			edges = append(edges, rpgmodel.NewFunctionalEdge(source, target, int(level.Int64), int(sibling.Int64), level.Valid, sibling.Valid))
		case rpgmodel.EdgeDependency:
			edges = append(edges, rpgmodel.NewDependencyEdge(source, target, rpgmodel.DependencyType(depType), isRuntime.Bool, isRuntime.Valid, int(sourceLine.Int64), sourceLine.Valid))
		}
	}
	return edges, rows.Err()
}

func (s *SQLStore) GetOutEdges(id string, filter EdgeKindFilter) ([]rpgmodel.Edge, error) {
	query := `SELECT source, target, edge_type, level, sibling_order, dependency_type, is_runtime, source_line FROM edges WHERE source = ?`
	args := []interface{}{id}
	if filter != "" {
		query += ` AND edge_type = ?`
		args = append(args, string(filter))
	}
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, rpgerrors.StoreError("querying out edges", err)
	}
	return scanEdges(rows)
}

func (s *SQLStore) GetInEdges(id string, filter EdgeKindFilter) ([]rpgmodel.Edge, error) {
	query := `SELECT source, target, edge_type, level, sibling_order, dependency_type, is_runtime, source_line FROM edges WHERE target = ?`
	args := []interface{}{id}
	if filter != "" {
		query += ` AND edge_type = ?`
		args = append(args, string(filter))
	}
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, rpgerrors.StoreError("querying in edges", err)
	}
	return scanEdges(rows)
}

func (s *SQLStore) GetChildren(id string) ([]rpgmodel.Node, error) {
	edges, err := s.GetOutEdges(id, EdgeKindFilter(rpgmodel.EdgeFunctional))
	if err != nil {
		return nil, err
	}
	var children []rpgmodel.Node
	for _, e := range edges {
		if n, ok := s.GetNode(e.Target); ok {
			children = append(children, n)
		}
	}
	return children, nil
}

func (s *SQLStore) GetParent(id string) (rpgmodel.Node, bool, error) {
	edges, err := s.GetInEdges(id, EdgeKindFilter(rpgmodel.EdgeFunctional))
	if err != nil {
		return rpgmodel.Node{}, false, err
	}
	if len(edges) == 0 {
		return rpgmodel.Node{}, false, nil
	}
	n, ok := s.GetNode(edges[0].Source)
	return n, ok, nil
}

func (s *SQLStore) GetDependencies(id string) ([]rpgmodel.Node, error) {
	edges, err := s.GetOutEdges(id, EdgeKindFilter(rpgmodel.EdgeDependency))
	if err != nil {
		return nil, err
	}
	var deps []rpgmodel.Node
	for _, e := range edges {
		if n, ok := s.GetNode(e.Target); ok {
			deps = append(deps, n)
		}
	}
	return deps, nil
}

func (s *SQLStore) GetDependents(id string) ([]rpgmodel.Node, error) {
	edges, err := s.GetInEdges(id, EdgeKindFilter(rpgmodel.EdgeDependency))
	if err != nil {
		return nil, err
	}
	var deps []rpgmodel.Node
	for _, e := range edges {
		if n, ok := s.GetNode(e.Source); ok {
			deps = append(deps, n)
		}
	}
	return deps, nil
}

func (s *SQLStore) GetTopologicalOrder() ([]rpgmodel.Node, error) {
	nodes, err := s.AllNodes()
	if err != nil {
		return nil, err
	}
	edges, err := s.AllEdges()
	if err != nil {
		return nil, err
	}
	return kahnOrder(nodes, edges), nil
}

// kahnOrder is shared sorting logic between SQLStore and any future
// backend; MemoryStore keeps its own index-backed variant for speed.
func kahnOrder(nodes []rpgmodel.Node, edges []rpgmodel.Edge) []rpgmodel.Node {
	byID := make(map[string]rpgmodel.Node, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	incoming := make(map[string][]rpgmodel.Edge)
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		inDegree[n.ID] = 0
		ids = append(ids, n.ID)
	}
	for _, e := range edges {
		if e.Type == rpgmodel.EdgeDependency {
			inDegree[e.Source]++
			incoming[e.Target] = append(incoming[e.Target], e)
		}
	}

	sort.Strings(ids)
	var ready []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	var order []rpgmodel.Node
	visited := make(map[string]bool, len(nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, byID[id])
		for _, e := range incoming[id] {
			inDegree[e.Source]--
			if inDegree[e.Source] == 0 && !visited[e.Source] {
				ready = append(ready, e.Source)
			}
		}
	}
	if len(order) < len(nodes) {
		var remaining []string
		for _, id := range ids {
			if !visited[id] {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		for _, id := range remaining {
			order = append(order, byID[id])
		}
	}
	return order
}

func (s *SQLStore) SearchByFeature(query string) ([]SearchHit, error) {
	nodes, err := s.AllNodes()
	if err != nil {
		return nil, err
	}
	mem := NewMemoryStore()
	for _, n := range nodes {
		_ = mem.AddNode(n)
	}
	return mem.SearchByFeature(query)
}

func (s *SQLStore) SearchByPath(glob string) ([]rpgmodel.Node, error) {
	nodes, err := s.AllNodes()
	if err != nil {
		return nil, err
	}
	mem := NewMemoryStore()
	for _, n := range nodes {
		_ = mem.AddNode(n)
	}
	return mem.SearchByPath(glob)
}

func (s *SQLStore) GetStats() (Stats, error) {
	nodes, err := s.AllNodes()
	if err != nil {
		return Stats{}, err
	}
	edges, err := s.AllEdges()
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{NodeCount: len(nodes), EdgeCount: len(edges)}
	for _, n := range nodes {
		if n.Type == rpgmodel.NodeHighLevel {
			stats.HighLevelNodeCount++
		} else {
			stats.LowLevelNodeCount++
		}
	}
	return stats, nil
}

func (s *SQLStore) ExportJSON(config ExportConfig) ([]byte, error) {
	nodes, err := s.AllNodes()
	if err != nil {
		return nil, err
	}
	edges, err := s.AllEdges()
	if err != nil {
		return nil, err
	}
	return MarshalEnvelope(BuildEnvelope(config, nodes, edges))
}

func (s *SQLStore) ImportJSON(payload []byte) error {
	env, err := UnmarshalEnvelope(payload)
	if err != nil {
		return err
	}
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM edges`); err != nil {
			return rpgerrors.StoreError("clearing edges", err)
		}
		if _, err := tx.Exec(`DELETE FROM nodes`); err != nil {
			return rpgerrors.StoreError("clearing nodes", err)
		}
		for _, ne := range env.Nodes {
			n, err := FromEnvelopeNode(ne)
			if err != nil {
				return err
			}
			if err := insertNode(tx, n); err != nil {
				return err
			}
		}
		for _, ee := range env.Edges {
			e, err := FromEnvelopeEdge(ee)
			if err != nil {
				return err
			}
			var level, sibling, sourceLine sql.NullInt64
			var isRuntime sql.NullBool
			if e.HasLevel() {
				level = sql.NullInt64{Int64: int64(e.Level), Valid: true}
			}
			if e.HasSiblingOrder() {
				sibling = sql.NullInt64{Int64: int64(e.SiblingOrder), Valid: true}
			}
			if e.HasIsRuntime() {
				isRuntime = sql.NullBool{Bool: e.IsRuntime, Valid: true}
			}
			if e.HasSourceLine() {
				sourceLine = sql.NullInt64{Int64: int64(e.SourceLine), Valid: true}
			}
			if _, err := tx.Exec(`INSERT INTO edges (source, target, edge_type, level, sibling_order, dependency_type, is_runtime, source_line)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				e.Source, e.Target, string(e.Type), level, sibling, string(e.DependencyType), isRuntime, sourceLine); err != nil {
				return rpgerrors.StoreError("inserting edge", err)
			}
		}
		return nil
	})
}

func (s *SQLStore) AllNodes() ([]rpgmodel.Node, error) {
	rows, err := s.conn.Query(`SELECT id, node_type, description, keywords, intent, directory_path,
		file_path, metadata_directory_path, entity_kind, qualified_name,
		start_line, end_line, scip_symbol, source_text, has_source_text
		FROM nodes ORDER BY id`)
	if err != nil {
		return nil, rpgerrors.StoreError("querying all nodes", err)
	}
	defer rows.Close()
	var nodes []rpgmodel.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, rpgerrors.StoreError("scanning node row", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *SQLStore) AllEdges() ([]rpgmodel.Edge, error) {
	rows, err := s.conn.Query(`SELECT source, target, edge_type, level, sibling_order, dependency_type, is_runtime, source_line
		FROM edges ORDER BY source, target`)
	if err != nil {
		return nil, rpgerrors.StoreError("querying all edges", err)
	}
	return scanEdges(rows)
}

func (s *SQLStore) Close() error {
	return s.conn.Close()
}

func jsonMarshalStrings(ss []string) (string, error) {
	data, err := json.Marshal(ss)
	return string(data), err
}

func jsonUnmarshalStrings(data string) []string {
	var ss []string
	_ = json.Unmarshal([]byte(data), &ss)
	return ss
}
