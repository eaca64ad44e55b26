package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ajxudir/depfloor/pkg/registry"
)

// FakeIndex is an in-memory package index serving both the Simple JSON API
// and the legacy JSON API over HTTP.
//
// Projects not added return 404. Every file is a universal wheel named after
// the project and version.
type FakeIndex struct {
	server *httptest.Server

	mu       sync.Mutex
	projects map[string][]fakeFile
	requests atomic.Int32
}

type fakeFile struct {
	version  string
	uploaded time.Time
	yanked   bool
}

// NewFakeIndex starts a FakeIndex that is shut down when the test ends.
func NewFakeIndex(t *testing.T) *FakeIndex {
	t.Helper()
	idx := &FakeIndex{projects: make(map[string][]fakeFile)}
	idx.server = httptest.NewServer(http.HandlerFunc(idx.serve))
	t.Cleanup(idx.server.Close)
	return idx
}

// URL returns the index root, suitable for registry.Options.BaseURL.
func (f *FakeIndex) URL() string {
	return f.server.URL
}

// Requests returns how many requests the index has served.
func (f *FakeIndex) Requests() int {
	return int(f.requests.Load())
}

// AddRelease records a release of a project.
//
// Parameters:
//   - name: Project name, normalized before storing
//   - version: Release version
//   - uploaded: Upload time of the release's only file
//
// Returns:
//   - *FakeIndex: Self for method chaining
func (f *FakeIndex) AddRelease(name, version string, uploaded time.Time) *FakeIndex {
	return f.add(name, fakeFile{version: version, uploaded: uploaded})
}

// AddYanked records a yanked release of a project.
func (f *FakeIndex) AddYanked(name, version string, uploaded time.Time) *FakeIndex {
	return f.add(name, fakeFile{version: version, uploaded: uploaded, yanked: true})
}

func (f *FakeIndex) add(name string, file fakeFile) *FakeIndex {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := registry.NormalizeName(name)
	f.projects[key] = append(f.projects[key], file)
	return f
}

func (f *FakeIndex) serve(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	var name string
	var legacy bool
	switch {
	case strings.HasPrefix(r.URL.Path, "/simple/"):
		name = strings.Trim(strings.TrimPrefix(r.URL.Path, "/simple/"), "/")
	case strings.HasPrefix(r.URL.Path, "/pypi/") && strings.HasSuffix(r.URL.Path, "/json"):
		name = strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/pypi/"), "/json")
		legacy = true
	default:
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	files, ok := f.projects[name]
	files = append([]fakeFile(nil), files...)
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	var doc interface{}
	if legacy {
		doc = legacyDocument(name, files)
	} else {
		w.Header().Set("Content-Type", "application/vnd.pypi.simple.v1+json")
		doc = simpleDocument(name, files)
	}
	_ = json.NewEncoder(w).Encode(doc)
}

func wheelName(name, version string) string {
	return strings.ReplaceAll(name, "-", "_") + "-" + version + "-py3-none-any.whl"
}

func simpleDocument(name string, files []fakeFile) map[string]interface{} {
	entries := make([]map[string]interface{}, 0, len(files))
	for _, file := range files {
		entries = append(entries, map[string]interface{}{
			"filename":    wheelName(name, file.version),
			"upload-time": file.uploaded.UTC().Format(time.RFC3339),
			"yanked":      file.yanked,
		})
	}
	return map[string]interface{}{
		"meta":  map[string]string{"api-version": "1.1"},
		"name":  name,
		"files": entries,
	}
}

func legacyDocument(name string, files []fakeFile) map[string]interface{} {
	releases := make(map[string][]map[string]interface{})
	for _, file := range files {
		releases[file.version] = append(releases[file.version], map[string]interface{}{
			"filename":             wheelName(name, file.version),
			"upload_time_iso_8601": file.uploaded.UTC().Format("2006-01-02T15:04:05.000000Z"),
			"yanked":               file.yanked,
		})
	}
	return map[string]interface{}{
		"info":     map[string]string{"name": name},
		"releases": releases,
	}
}
