package inventory

import (
	"bytes"
	"compress/zlib"
	"context"
	"io"
	"strings"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
	"github.com/rohmanhakim/docsintel/internal/httpcache"
)

// sphinxHeaderPrefix is the first line of every objects.inv version 2
// file. A file lacking it is not a Sphinx inventory.
const sphinxHeaderPrefix = "# Sphinx inventory version"

// SphinxProcessor detects and parses Sphinx's objects.inv format: a
// plaintext header followed by a zlib-compressed body of
// "name domain:role priority uri dispname" lines.
type SphinxProcessor struct{}

// NewSphinxProcessor returns the Sphinx objects.inv processor.
func NewSphinxProcessor() *SphinxProcessor { return &SphinxProcessor{} }

func (p *SphinxProcessor) Name() string { return "sphinx" }

func (p *SphinxProcessor) Capabilities() Capabilities {
	return Capabilities{
		SupportedInventoryTypes:        []docmodel.InventoryType{docmodel.InventoryTypeSphinxObjectsInv},
		SupportedFilters:                []string{"domain", "role", "priority"},
		RecommendedConfidenceThreshold: 1.0,
	}
}

func (p *SphinxProcessor) Detect(ctx context.Context, proxy *httpcache.Proxy, location string) (docmodel.InventoryDetection, error) {
	url := joinLocation(location, "objects.inv")

	exists, err := proxy.Probe(ctx, url)
	if err != nil {
		if httpcache.IsRobotsDisallowed(err) {
			return nil, err
		}
		return nil, nil
	}
	if !exists {
		return nil, nil
	}

	body, _, err := proxy.RetrieveBytes(ctx, url)
	if err != nil {
		if httpcache.IsRobotsDisallowed(err) {
			return nil, err
		}
		return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseFetchFailed, Reason: err.Error()}
	}

	project, version, rows, err := parseObjectsInv(body)
	if err != nil {
		return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseParseFailed, Reason: err.Error()}
	}
	if len(rows) == 0 {
		return nil, &Error{Processor: p.Name(), Location: location, Cause: ErrCauseEmptyResult, Reason: "objects.inv decompressed to zero entries"}
	}

	objects := make([]docmodel.InventoryObject, 0, len(rows))
	for _, row := range rows {
		dispname := row.dispname
		if dispname == "-" {
			dispname = row.name
		}
		specifics := map[string]string{
			"domain":   row.domain,
			"role":     row.role,
			"priority": row.priority,
			"dispname": dispname,
			"project":  project,
			"version":  version,
		}
		objects = append(objects, docmodel.NewInventoryObject(row.name, row.uri, docmodel.InventoryTypeSphinxObjectsInv, location, specifics))
	}

	return &sphinxDetection{
		baseURL: location,
		project: project,
		version: version,
		objects: objects,
	}, nil
}

type sphinxInvRow struct {
	name     string
	domain   string
	role     string
	priority string
	uri      string
	dispname string
}

// parseObjectsInv parses the 4-line plaintext header and zlib-compressed
// body of a Sphinx objects.inv version 2 file.
func parseObjectsInv(data []byte) (project, version string, rows []sphinxInvRow, err error) {
	lines := make([]string, 0, 4)
	offset := 0
	for i := 0; i < 4; i++ {
		idx := bytes.IndexByte(data[offset:], '\n')
		if idx < 0 {
			return "", "", nil, errInventoryTruncated
		}
		lines = append(lines, string(data[offset:offset+idx]))
		offset += idx + 1
	}

	if !strings.HasPrefix(lines[0], sphinxHeaderPrefix) {
		return "", "", nil, errNotSphinxInventory
	}
	project = strings.TrimSpace(strings.TrimPrefix(lines[1], "# Project:"))
	version = strings.TrimSpace(strings.TrimPrefix(lines[2], "# Version:"))

	reader, zerr := zlib.NewReader(bytes.NewReader(data[offset:]))
	if zerr != nil {
		return "", "", nil, zerr
	}
	defer reader.Close()

	decompressed, rerr := io.ReadAll(reader)
	if rerr != nil {
		return "", "", nil, rerr
	}

	for _, line := range strings.Split(string(decompressed), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 5)
		if len(fields) < 5 {
			continue
		}
		domain, role := splitDomainRole(fields[1])
		rows = append(rows, sphinxInvRow{
			name:     fields[0],
			domain:   domain,
			role:     role,
			priority: fields[2],
			uri:      fields[3],
			dispname: fields[4],
		})
	}
	return project, version, rows, nil
}

func splitDomainRole(s string) (domain, role string) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return s, ""
	}
	return parts[0], parts[1]
}

// SubstituteURIPlaceholder resolves the '$' name-substitution placeholder
// in a Sphinx object's raw uri, applied at content-extraction time.
func SubstituteURIPlaceholder(uri, name string) string {
	return strings.ReplaceAll(uri, "$", name)
}

type sphinxDetection struct {
	baseURL string
	project string
	version string
	objects []docmodel.InventoryObject
}

func (d *sphinxDetection) ProcessorName() string { return "sphinx" }
func (d *sphinxDetection) Genus() docmodel.Genus { return docmodel.GenusInventory }
func (d *sphinxDetection) Confidence() float64   { return 1.0 }
func (d *sphinxDetection) BaseURL() string       { return d.baseURL }

func (d *sphinxDetection) Metadata() map[string]string {
	return map[string]string{"project": d.project, "version": d.version}
}

func (d *sphinxDetection) FilterInventory(_ context.Context, filters docmodel.Filters) ([]docmodel.InventoryObject, error) {
	out := make([]docmodel.InventoryObject, 0, len(d.objects))
	for _, obj := range d.objects {
		if sphinxMatchesFilters(obj, filters) {
			out = append(out, obj.WithLocationURL(d.baseURL))
		}
	}
	return out, nil
}

func sphinxMatchesFilters(obj docmodel.InventoryObject, filters docmodel.Filters) bool {
	for _, key := range []string{"domain", "role", "priority"} {
		want, ok := filters[key]
		if !ok || want == "" {
			continue
		}
		got, _ := obj.Specific(key)
		if got == want {
			continue
		}
		if strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
			continue
		}
		return false
	}
	return true
}

// joinLocation appends a relative path to a location URL, ensuring
// exactly one separating slash.
func joinLocation(location, rel string) string {
	if strings.HasSuffix(location, "/") {
		return location + rel
	}
	return location + "/" + rel
}

var (
	errInventoryTruncated  = &parseSentinelError{"objects.inv header truncated"}
	errNotSphinxInventory  = &parseSentinelError{"missing Sphinx inventory version header"}
)

type parseSentinelError struct{ msg string }

func (e *parseSentinelError) Error() string { return e.msg }
