// Package sysml parses the textual SysML subset used for the aircraft
// architecture into an immutable in-memory document.
//
// The architecture is split across several .sysml files (package metadata,
// requirements, part definitions, port payload schemas, connections). The
// parser walks a directory, validates that every file targets the same
// package, and merges their contents into a single Architecture. It
// understands only the subset of SysML syntax used by this repository.
package sysml

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
)

var (
	packageRE = regexp.MustCompile(`package\s+([A-Za-z0-9_]+)\s*\{`)
	partDefRE = regexp.MustCompile(`part def\s+([A-Za-z0-9_]+)\s*\{`)
	portDefRE = regexp.MustCompile(`port def\s+([A-Za-z0-9_]+)\s*\{`)
	connectRE = regexp.MustCompile(`connect\s+([A-Za-z0-9_]+)\.([A-Za-z0-9_]+)\s+to\s+([A-Za-z0-9_]+)\.([A-Za-z0-9_]+)\s*;`)
	commentRE = regexp.MustCompile(`(?s)comment\s+([A-Za-z0-9_]+)\s*/\*\s*(.*?)\s*\*/`)
	spaceRE   = regexp.MustCompile(`\s+`)
)

// ParseFolder parses every .sysml file under dir and merges the results.
func ParseFolder(dir string) (*Architecture, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("sysml folder not found: %s", dir)
	}
	files, err := fsutil.FindFilesByExtension(dir, ".sysml")
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .sysml files found under %s", dir)
	}
	sort.Strings(files)

	arch := &Architecture{
		Parts:           map[string]*PartDefinition{},
		PortDefinitions: map[string]*PortDefinition{},
	}

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		pkg, body, err := extractPackageBody(string(raw), path)
		if err != nil {
			return nil, err
		}
		if arch.Package == "" {
			arch.Package = pkg
		} else if pkg != arch.Package {
			return nil, fmt.Errorf("mismatched package names: %s vs %s in %s", arch.Package, pkg, path)
		}

		partBlocks, err := extractNamedBlocks(body, "part def", partDefRE)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, block := range partBlocks {
			if _, exists := arch.Parts[block.name]; exists {
				return nil, fmt.Errorf("duplicate part definition for %s in %s", block.name, path)
			}
			part, err := buildPartDefinition(block.name, block.body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			arch.Parts[block.name] = part
		}

		portBlocks, err := extractNamedBlocks(body, "port def", portDefRE)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, block := range portBlocks {
			if _, exists := arch.PortDefinitions[block.name]; exists {
				return nil, fmt.Errorf("duplicate port definition for %s in %s", block.name, path)
			}
			def, err := buildPortDefinition(block.name, block.body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			arch.PortDefinitions[block.name] = def
		}

		arch.Requirements = append(arch.Requirements, parseRequirements(body)...)
		arch.Connections = append(arch.Connections, parseConnections(body)...)
	}

	if arch.Package == "" {
		arch.Package = "Package"
	}
	resolvePayloads(arch)
	return arch, nil
}

// LoadArchitecture parses the architecture from a directory or from any file
// within it.
func LoadArchitecture(path string) (*Architecture, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return ParseFolder(filepath.Dir(path))
	}
	return ParseFolder(path)
}

// resolvePayloads attaches each endpoint's payload schema once every port
// definition is known. Unknown payload names stay unresolved.
func resolvePayloads(arch *Architecture) {
	for _, part := range arch.Parts {
		for _, port := range part.Ports {
			port.PayloadDef = arch.PortDefinitions[port.Payload]
		}
	}
}

func extractPackageBody(text, path string) (string, string, error) {
	loc := packageRE.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", "", fmt.Errorf("no package declaration found in %s", path)
	}
	name := text[loc[2]:loc[3]]
	body, _, err := collectBlock(text, loc[1]-1)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", path, err)
	}
	return name, body, nil
}

// collectBlock returns the substring inside the balanced braces starting at
// braceStart, along with the index just past the closing brace.
func collectBlock(text string, braceStart int) (string, int, error) {
	depth := 0
	for idx := braceStart; idx < len(text); idx++ {
		switch text[idx] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[braceStart+1 : idx], idx + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unterminated block while parsing SysML text")
}

type namedBlock struct {
	name string
	body string
}

func extractNamedBlocks(body, keyword string, re *regexp.Regexp) ([]namedBlock, error) {
	var blocks []namedBlock
	idx := 0
	for idx < len(body) {
		loc := re.FindStringSubmatchIndex(body[idx:])
		if loc == nil {
			break
		}
		name := body[idx+loc[2] : idx+loc[3]]
		block, next, err := collectBlock(body, idx+loc[1]-1)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", keyword, name, err)
		}
		blocks = append(blocks, namedBlock{name: name, body: block})
		idx = next
	}
	return blocks, nil
}

// stmtKind tags the statement variants recognized inside part and port
// definition blocks.
type stmtKind int

const (
	stmtDoc stmtKind = iota
	stmtAttribute
	stmtPort
	stmtPartRef
	stmtOther
)

// statement is the tagged parse result for one block item. Only the field
// matching the kind is populated.
type statement struct {
	kind stmtKind
	doc  string
	attr *Attribute
	port *PortEndpoint
	ref  *PartReference
}

// blockStatements scans a definition block line by line, joining multi-line
// doc comments and classifying everything else into tagged statements.
func blockStatements(block string) ([]statement, error) {
	lines := strings.Split(block, "\n")
	var stmts []statement
	for idx := 0; idx < len(lines); idx++ {
		trimmed := strings.TrimSpace(lines[idx])
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "doc") {
			docLines := []string{trimmed}
			for !strings.Contains(trimmed, "*/") {
				idx++
				if idx >= len(lines) {
					return nil, fmt.Errorf("unterminated doc comment in SysML block")
				}
				trimmed = strings.TrimSpace(lines[idx])
				docLines = append(docLines, trimmed)
			}
			stmts = append(stmts, statement{kind: stmtDoc, doc: normalizeDoc(strings.Join(docLines, " "))})
			continue
		}
		stmt, err := classifyStatement(stripInlineComments(trimmed))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func classifyStatement(line string) (statement, error) {
	switch {
	case line == "":
		return statement{kind: stmtOther}, nil
	case strings.HasPrefix(line, "attribute "):
		return parseAttributeStmt(line)
	case strings.HasPrefix(line, "in port "):
		return parsePortStmt(DirectionIn, line)
	case strings.HasPrefix(line, "out port "):
		return parsePortStmt(DirectionOut, line)
	case strings.HasPrefix(line, "part "):
		return parsePartRefStmt(line)
	}
	// Anything else in a definition block is tolerated and skipped.
	return statement{kind: stmtOther}, nil
}

func parseAttributeStmt(line string) (statement, error) {
	content := trimStatement(line, "attribute ")
	attr := &Attribute{}
	decl := content
	if eq := strings.Index(content, "="); eq >= 0 {
		decl = content[:eq]
		attr.Raw = strings.TrimSpace(content[eq+1:])
	}
	// The declaration left of '=' may still carry a type annotation, as in
	// `attribute cruiseSpeed : Real = 250.0;`.
	if colon := strings.Index(decl, ":"); colon >= 0 {
		attr.Name = strings.TrimSpace(decl[:colon])
		attr.Type = strings.TrimSpace(decl[colon+1:])
	} else {
		attr.Name = strings.TrimSpace(decl)
	}
	return statement{kind: stmtAttribute, attr: attr}, nil
}

func parsePortStmt(direction Direction, line string) (statement, error) {
	content := trimStatement(line, string(direction))
	content = strings.TrimSpace(strings.TrimPrefix(content, "port "))
	colon := strings.Index(content, ":")
	if colon < 0 {
		return statement{}, fmt.Errorf("malformed port declaration: %s", line)
	}
	port := &PortEndpoint{
		Name:      strings.TrimSpace(content[:colon]),
		Direction: direction,
		Payload:   strings.TrimSpace(content[colon+1:]),
	}
	return statement{kind: stmtPort, port: port}, nil
}

func parsePartRefStmt(line string) (statement, error) {
	content := trimStatement(line, "part ")
	colon := strings.Index(content, ":")
	if colon < 0 {
		return statement{}, fmt.Errorf("malformed part reference: %s", line)
	}
	ref := &PartReference{
		Name:   strings.TrimSpace(content[:colon]),
		Target: strings.TrimSpace(content[colon+1:]),
	}
	return statement{kind: stmtPartRef, ref: ref}, nil
}

func trimStatement(line, prefix string) string {
	content := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	content = strings.TrimSuffix(content, ";")
	return strings.TrimSpace(content)
}

func buildPartDefinition(name, block string) (*PartDefinition, error) {
	part := &PartDefinition{Name: name, Attributes: NewAttributeSet()}
	stmts, err := blockStatements(block)
	if err != nil {
		return nil, fmt.Errorf("part def %s: %w", name, err)
	}
	pendingDoc := ""
	for _, stmt := range stmts {
		switch stmt.kind {
		case stmtDoc:
			// The first doc before any statements describes the part itself.
			if part.Doc == "" && part.Attributes.Len() == 0 && len(part.Ports) == 0 && len(part.Parts) == 0 {
				part.Doc = stmt.doc
			} else {
				pendingDoc = stmt.doc
			}
			continue
		case stmtAttribute:
			stmt.attr.Doc = pendingDoc
			part.Attributes.Add(stmt.attr)
		case stmtPort:
			stmt.port.Doc = pendingDoc
			part.Ports = append(part.Ports, stmt.port)
		case stmtPartRef:
			stmt.ref.Doc = pendingDoc
			part.Parts = append(part.Parts, stmt.ref)
		}
		pendingDoc = ""
	}
	return part, nil
}

func buildPortDefinition(name, block string) (*PortDefinition, error) {
	def := &PortDefinition{Name: name, Attributes: NewAttributeSet()}
	stmts, err := blockStatements(block)
	if err != nil {
		return nil, fmt.Errorf("port def %s: %w", name, err)
	}
	pendingDoc := ""
	for _, stmt := range stmts {
		switch stmt.kind {
		case stmtDoc:
			if def.Doc == "" && def.Attributes.Len() == 0 {
				def.Doc = stmt.doc
			} else {
				pendingDoc = stmt.doc
			}
			continue
		case stmtAttribute:
			stmt.attr.Doc = pendingDoc
			def.Attributes.Add(stmt.attr)
		}
		pendingDoc = ""
	}
	return def, nil
}

// stripInlineComments removes /* ... */ spans before a line is classified.
func stripInlineComments(line string) string {
	result := line
	for {
		start := strings.Index(result, "/*")
		if start < 0 {
			break
		}
		end := strings.Index(result[start+2:], "*/")
		if end < 0 {
			break
		}
		result = strings.TrimSpace(result[:start] + result[start+2+end+2:])
	}
	return strings.TrimSpace(result)
}

// normalizeDoc extracts the comment body and collapses repeated whitespace so
// doc strings stay compact.
func normalizeDoc(text string) string {
	start := strings.Index(text, "/*")
	end := strings.LastIndex(text, "*/")
	if start >= 0 && end > start {
		text = text[start+2 : end]
	}
	return spaceRE.ReplaceAllString(strings.TrimSpace(text), " ")
}

func parseRequirements(body string) []Requirement {
	var reqs []Requirement
	for _, match := range commentRE.FindAllStringSubmatch(body, -1) {
		reqs = append(reqs, Requirement{
			Identifier: match[1],
			Text:       spaceRE.ReplaceAllString(strings.TrimSpace(match[2]), " "),
		})
	}
	return reqs
}

func parseConnections(body string) []Connection {
	var conns []Connection
	for _, match := range connectRE.FindAllStringSubmatch(body, -1) {
		conns = append(conns, Connection{
			SrcComponent: match[1],
			SrcPort:      match[2],
			DstComponent: match[3],
			DstPort:      match[4],
		})
	}
	return conns
}
