// Package registry fetches the release history of a project from a PyPI
// compatible index.
//
// Two index APIs are supported: the Simple repository API in its JSON form
// (PEP 691, the default) and the legacy JSON API. Both are reduced to a flat
// list of artifacts, one per uploaded file, which the history package turns
// into dated releases.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/git-pkgs/purl"

	"github.com/ajxudir/depfloor/pkg/history"
	"github.com/ajxudir/depfloor/pkg/verbose"
)

const ecosystem = "pypi"

// API selects the index API a Client talks to.
type API string

const (
	// APISimple is the JSON Simple repository API, GET {base}/simple/{name}/.
	APISimple API = "simple"

	// APIJSON is the legacy JSON API, GET {base}/pypi/{name}/json.
	APIJSON API = "json"
)

// simpleAccept requests the JSON form of the Simple API.
const simpleAccept = "application/vnd.pypi.simple.v1+json"

// DefaultBaseURL returns the registry base URL for PyPI.
func DefaultBaseURL() string {
	if u := purl.DefaultRegistry(ecosystem); u != "" {
		return u
	}
	return "https://pypi.org"
}

// PackageURL returns the purl identifying a PyPI project, e.g. "pkg:pypi/requests".
func PackageURL(name string) string {
	return purl.MakePURLString(ecosystem, NormalizeName(name), "")
}

// ProjectPage returns the human-facing project page URL, or "" if unknown.
func ProjectPage(name string) string {
	u, err := purl.MakePURL(ecosystem, NormalizeName(name), "").RegistryURL()
	if err != nil {
		return ""
	}
	return u
}

// Options configures a Client.
//
// Fields:
//   - BaseURL: Index root; empty uses DefaultBaseURL
//   - API: APISimple or APIJSON; empty uses APISimple
//   - SkipYanked: Drop files marked as yanked
type Options struct {
	BaseURL    string
	API        API
	SkipYanked bool
}

// Client lists the uploaded files of a project.
type Client struct {
	baseURL    string
	api        API
	skipYanked bool
	getter     Getter
}

// New creates a Client.
//
// Parameters:
//   - getter: HTTP access, normally a BreakerGetter around a Fetcher
//   - opts: Index location and API
//
// Returns:
//   - *Client: Ready to use client
//   - error: When opts.API is unknown
func New(getter Getter, opts Options) (*Client, error) {
	api := opts.API
	if api == "" {
		api = APISimple
	}
	if api != APISimple && api != APIJSON {
		return nil, fmt.Errorf("unknown registry api %q (valid: %s, %s)", api, APISimple, APIJSON)
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(base, "/"),
		api:        api,
		skipYanked: opts.SkipYanked,
		getter:     getter,
	}, nil
}

// Artifacts returns every uploaded file of the project with its version
// string and upload time.
//
// Parameters:
//   - ctx: Context for cancellation
//   - name: Project name as written in the requirement
//
// Returns:
//   - []history.Artifact: Files sorted by filename
//   - error: *NotFoundError when the project does not exist, or a transport error
func (c *Client) Artifacts(ctx context.Context, name string) ([]history.Artifact, error) {
	var (
		artifacts []history.Artifact
		err       error
	)
	switch c.api {
	case APIJSON:
		artifacts, err = c.fromJSONAPI(ctx, name)
	default:
		artifacts, err = c.fromSimpleAPI(ctx, name)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Name: name, PURL: PackageURL(name)}
		}
		return nil, fmt.Errorf("%s: %w", PackageURL(name), err)
	}

	if c.skipYanked {
		kept := artifacts[:0]
		for _, a := range artifacts {
			if a.Yanked {
				verbose.ReleaseDropped(name, a.Version, "yanked")
				continue
			}
			kept = append(kept, a)
		}
		artifacts = kept
	}

	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].Filename < artifacts[j].Filename
	})
	return artifacts, nil
}

// yankedFlag decodes "yanked", which is false or a reason string in the
// Simple API and a boolean in the JSON API.
type yankedFlag bool

func (y *yankedFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*y = yankedFlag(b)
		return nil
	}
	var reason string
	if err := json.Unmarshal(data, &reason); err != nil {
		return fmt.Errorf("invalid yanked value %s", string(data))
	}
	*y = true
	return nil
}

type simpleProject struct {
	Name  string       `json:"name"`
	Files []simpleFile `json:"files"`
}

type simpleFile struct {
	Filename   string     `json:"filename"`
	UploadTime string     `json:"upload-time"`
	Yanked     yankedFlag `json:"yanked"`
}

func (c *Client) fromSimpleAPI(ctx context.Context, name string) ([]history.Artifact, error) {
	url := fmt.Sprintf("%s/simple/%s/", c.baseURL, NormalizeName(name))
	body, err := c.getter.Get(ctx, url, simpleAccept)
	if err != nil {
		return nil, err
	}

	var project simpleProject
	if err := json.Unmarshal(body, &project); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}

	artifacts := make([]history.Artifact, 0, len(project.Files))
	for _, f := range project.Files {
		v, ok := VersionFromFilename(f.Filename)
		if !ok {
			verbose.ReleaseDropped(name, f.Filename, "unrecognized filename")
			continue
		}
		artifacts = append(artifacts, history.Artifact{
			Filename:   f.Filename,
			Version:    v,
			UploadTime: f.UploadTime,
			Yanked:     bool(f.Yanked),
		})
	}
	return artifacts, nil
}

type jsonProject struct {
	Releases map[string][]jsonFile `json:"releases"`
}

type jsonFile struct {
	Filename   string     `json:"filename"`
	UploadTime string     `json:"upload_time_iso_8601"`
	Yanked     yankedFlag `json:"yanked"`
}

func (c *Client) fromJSONAPI(ctx context.Context, name string) ([]history.Artifact, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, NormalizeName(name))
	body, err := c.getter.Get(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}

	var project jsonProject
	if err := json.Unmarshal(body, &project); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}

	var artifacts []history.Artifact
	for ver, files := range project.Releases {
		for _, f := range files {
			artifacts = append(artifacts, history.Artifact{
				Filename:   f.Filename,
				Version:    ver,
				UploadTime: f.UploadTime,
				Yanked:     bool(f.Yanked),
			})
		}
	}
	return artifacts, nil
}
