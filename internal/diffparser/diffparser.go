// Package diffparser turns a VCS name-status report into structured
// before/after entity changes, without inventing any structure the syntax
// probe did not itself produce.
package diffparser

import (
	"context"
	"path/filepath"
	"strings"

	"rpg/internal/rpgid"
	"rpg/internal/rpglog"
	"rpg/internal/rpgmodel"
	"rpg/internal/syntaxprobe"
	"rpg/internal/syntaxprobe/grammars"
)

// ChangedEntity is one entity affected by a commit range.
type ChangedEntity struct {
	ID            string
	EntityType    rpgmodel.EntityKind
	EntityName    string
	QualifiedName string
	FilePath      string
	StartLine     int
	EndLine       int
	SourceCode    string
	// Imports is only populated on the file-level entity; it carries the
	// syntax probe's import list for the Evolver's dependency injection.
	Imports []syntaxprobe.Import
}

// Modification pairs an entity's before and after state.
type Modification struct {
	Old ChangedEntity
	New ChangedEntity
}

// DiffResult is the structural diff for a commit range.
type DiffResult struct {
	Insertions    []ChangedEntity
	Deletions     []ChangedEntity
	Modifications []Modification
}

// VcsProbe is the subset of version-control operations the parser needs:
// the raw name-status report for a range, and a file's bytes at a revision.
type VcsProbe interface {
	NameStatus(ctx context.Context, repo, commitRange string) (string, error)
	FileAtRevision(ctx context.Context, repo, rev, path string) ([]byte, bool, error)
}

// Parser consumes VCS name-status output and produces a DiffResult.
type Parser struct {
	repo   string
	probe  VcsProbe
	logger *rpglog.Logger
}

// New builds a Parser rooted at repo, using probe for VCS access.
func New(repo string, probe VcsProbe, logger *rpglog.Logger) *Parser {
	return &Parser{repo: repo, probe: probe, logger: logger}
}

// statusLine is one parsed row of a name-status report.
type statusLine struct {
	status  byte
	oldPath string
	newPath string
}

// Parse fetches the name-status report for commitRange and builds the
// structural diff. commitRange is "old..new"; a single revision with no
// ".." is treated as new with an empty old side (nothing to diff against).
func (p *Parser) Parse(ctx context.Context, commitRange string) (DiffResult, error) {
	raw, err := p.probe.NameStatus(ctx, p.repo, commitRange)
	if err != nil {
		return DiffResult{}, err
	}

	oldRev, newRev := splitRange(commitRange)

	lines := parseStatusLines(raw)
	var result DiffResult

	for _, line := range lines {
		switch {
		case line.status == 'A':
			result.Insertions = append(result.Insertions, p.probeInsertions(ctx, newRev, line.newPath)...)
		case line.status == 'D':
			result.Deletions = append(result.Deletions, p.probeDeletions(ctx, oldRev, line.oldPath)...)
		case line.status == 'M':
			ins, del, mods := p.diffModified(ctx, oldRev, newRev, line.oldPath)
			result.Insertions = append(result.Insertions, ins...)
			result.Deletions = append(result.Deletions, del...)
			result.Modifications = append(result.Modifications, mods...)
		case line.status == 'R':
			result.Deletions = append(result.Deletions, p.probeDeletions(ctx, oldRev, line.oldPath)...)
			result.Insertions = append(result.Insertions, p.probeInsertions(ctx, newRev, line.newPath)...)
		case line.status == 'C':
			result.Insertions = append(result.Insertions, p.probeInsertions(ctx, newRev, line.newPath)...)
		}
	}

	return result, nil
}

func splitRange(commitRange string) (old, new string) {
	if idx := strings.Index(commitRange, ".."); idx >= 0 {
		return commitRange[:idx], commitRange[idx+2:]
	}
	return "", commitRange
}

// parseStatusLines parses raw name-status text: "<STATUS>\t<path>" for
// plain changes, "R<score>\t<old>\t<new>" / "C<score>\t<old>\t<new>" for
// renames/copies. Whitespace-only and malformed lines are skipped.
func parseStatusLines(raw string) []statusLine {
	var out []statusLine
	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		statusField := fields[0]
		if len(statusField) == 0 {
			continue
		}
		status := statusField[0]

		switch status {
		case 'A', 'M', 'D':
			out = append(out, statusLine{status: status, oldPath: fields[1], newPath: fields[1]})
		case 'R', 'C':
			if len(fields) < 3 {
				continue
			}
			out = append(out, statusLine{status: status, oldPath: fields[1], newPath: fields[2]})
		}
	}
	return out
}

// probeInsertions returns one insertion per entity the probe extracts from
// path's content at rev, plus the file-level entity.
func (p *Parser) probeInsertions(ctx context.Context, rev, path string) []ChangedEntity {
	source, ok := p.readFile(ctx, rev, path)
	if !ok {
		return nil
	}
	entities := p.entitiesForFile(source, path)
	return entities
}

// probeDeletions returns one deletion per entity the probe extracts from
// path's content at rev, plus the file-level entity.
func (p *Parser) probeDeletions(ctx context.Context, rev, path string) []ChangedEntity {
	source, ok := p.readFile(ctx, rev, path)
	if !ok {
		return nil
	}
	return p.entitiesForFile(source, path)
}

// diffModified probes both revisions of path and pairs entities by
// (entityType, qualifiedName): unpaired-old becomes a deletion,
// unpaired-new an insertion, paired with differing source a modification.
func (p *Parser) diffModified(ctx context.Context, oldRev, newRev, path string) (insertions, deletions []ChangedEntity, modifications []Modification) {
	oldSource, oldOK := p.readFile(ctx, oldRev, path)
	newSource, newOK := p.readFile(ctx, newRev, path)

	if !oldOK && !newOK {
		return nil, nil, nil
	}

	var oldEntities, newEntities []ChangedEntity
	if oldOK {
		oldEntities = p.entitiesForFile(oldSource, path)
	}
	if newOK {
		newEntities = p.entitiesForFile(newSource, path)
	}

	oldByKey := make(map[string]ChangedEntity, len(oldEntities))
	for _, e := range oldEntities {
		oldByKey[pairKey(e)] = e
	}
	newByKey := make(map[string]ChangedEntity, len(newEntities))
	for _, e := range newEntities {
		newByKey[pairKey(e)] = e
	}

	for key, oldEntity := range oldByKey {
		newEntity, ok := newByKey[key]
		if !ok {
			deletions = append(deletions, oldEntity)
			continue
		}
		if oldEntity.SourceCode != newEntity.SourceCode {
			modifications = append(modifications, Modification{Old: oldEntity, New: newEntity})
		}
	}
	for key, newEntity := range newByKey {
		if _, ok := oldByKey[key]; !ok {
			insertions = append(insertions, newEntity)
		}
	}

	return insertions, deletions, modifications
}

func pairKey(e ChangedEntity) string {
	return string(e.EntityType) + "\x00" + e.QualifiedName
}

// entitiesForFile runs the syntax probe over source and always appends the
// file-level entity, so cross-file dependency edges have a target even for
// files whose language the probe cannot parse further.
func (p *Parser) entitiesForFile(source []byte, path string) []ChangedEntity {
	fileEntity := ChangedEntity{
		ID:            rpgid.LowLevel(path, rpgmodel.EntityFile, path, 0),
		EntityType:    rpgmodel.EntityFile,
		EntityName:    path,
		QualifiedName: path,
		FilePath:      path,
		SourceCode:    string(source),
	}
	tag, ok := grammars.TagFromExtension(filepath.Ext(path))
	if !ok {
		return []ChangedEntity{fileEntity}
	}

	result := syntaxprobe.Probe(source, tag, path)
	fileEntity.Imports = result.Imports
	out := []ChangedEntity{fileEntity}
	for _, e := range result.Entities {
		out = append(out, ChangedEntity{
			ID:            rpgid.LowLevel(path, e.Kind, e.QualifiedName, 0),
			EntityType:    e.Kind,
			EntityName:    e.Name,
			QualifiedName: e.QualifiedName,
			FilePath:      path,
			StartLine:     e.StartLine,
			EndLine:       e.EndLine,
			SourceCode:    e.SourceSlice,
		})
	}
	return out
}

func (p *Parser) readFile(ctx context.Context, rev, path string) ([]byte, bool) {
	data, ok, err := p.probe.FileAtRevision(ctx, p.repo, rev, path)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("failed reading file at revision", map[string]interface{}{
				"path": path, "revision": rev, "error": err.Error(),
			})
		}
		return nil, false
	}
	return data, ok
}
