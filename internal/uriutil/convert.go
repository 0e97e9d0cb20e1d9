// Package uriutil converts between file paths and file:// document URIs
package uriutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// PathToURI returns the file:// URI of path, made absolute first.
// Windows drive paths become file:///C:/..., UNC paths file://server/share/...
func PathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	u := url.URL{Scheme: "file"}
	if runtime.GOOS == "windows" && strings.HasPrefix(abs, `\\`) {
		host, rest, _ := strings.Cut(filepath.ToSlash(strings.TrimPrefix(abs, `\\`)), "/")
		u.Host = host
		u.Path = "/" + rest
		return u.String()
	}

	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u.Path = slashed
	return u.String()
}

// URIToPath returns the file path of a file:// URI. Anything that does not
// parse as a file URI has its scheme prefix stripped and is returned as is.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return fromSlash(strings.TrimPrefix(strings.TrimPrefix(uri, "file://"), "file:"))
	}
	if len(u.Host) == 2 && u.Host[1] == ':' {
		// file://C:/path
		return fromSlash(u.Host + u.Path)
	}
	if u.Host != "" && u.Host != "localhost" {
		if runtime.GOOS == "windows" {
			return `\\` + u.Host + strings.ReplaceAll(u.Path, "/", `\`)
		}
		return u.Host + u.Path
	}
	return fromSlash(u.Path)
}

// fromSlash drops the leading slash of /C:/ drive paths and converts separators
func fromSlash(p string) string {
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}
