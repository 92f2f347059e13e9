package metadata

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"

	"campusdocs-ai/internal/contextutil"
)

// FallbackYear is used when a filename does not carry the YYYY_ prefix.
// Malformed names are tolerated rather than rejected so a single badly named
// file cannot abort a whole ingestion run.
const FallbackYear = 2024

var yearPrefix = regexp.MustCompile(`^(\d{4})_`)

// Meta describes a dataset document derived from its path.
// Dataset files are expected to follow dataset/<Category>/YYYY_Category_Title.pdf.
type Meta struct {
	FileName string
	Year     int
	Category string
}

// FromPath extracts document metadata from a file path.
// The year is the leading four-digit prefix of the filename; the category is the
// parent directory name. A missing year prefix falls back to FallbackYear and is
// logged as a warning so malformed dataset files remain visible.
func FromPath(ctx context.Context, path string) Meta {
	fileName := filepath.Base(path)
	category := filepath.Base(filepath.Dir(path))

	year := FallbackYear
	if m := yearPrefix.FindStringSubmatch(fileName); m != nil {
		// The regexp guarantees four digits, so Atoi cannot fail here.
		year, _ = strconv.Atoi(m[1])
	} else {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "filename missing year prefix, using fallback",
			"file_name", fileName, "fallback_year", FallbackYear)
	}

	return Meta{
		FileName: fileName,
		Year:     year,
		Category: category,
	}
}
