package bundler

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ImageListName is the file Bundler writes next to bundle.out, one image per
// line, in camera order.
const ImageListName = "list.txt"

// ReadImageNames returns the first field of every non-blank line of r.
// Bundler appends the focal length estimate after the name, which is ignored.
func ReadImageNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "bundler: reading image list")
	}
	return names, nil
}

// Load decodes the bundle file at path together with the list.txt stored in
// the same directory.
func Load(path string, opts Options) (*Reconstruction, error) {
	result, err := ReadFile(path, opts)
	if err != nil {
		return nil, err
	}

	listPath := filepath.Join(filepath.Dir(path), ImageListName)
	f, err := os.Open(listPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if opts.SkipImageNames {
				return &Reconstruction{BundleResult: result}, nil
			}
			return nil, &FileNotFoundError{Path: listPath, Err: err}
		}
		return nil, errors.Wrapf(err, "bundler: opening %s", listPath)
	}
	defer f.Close()

	names, err := ReadImageNames(f)
	if err != nil {
		return nil, err
	}
	if len(names) != result.Header.NumImages {
		return nil, &DimensionMismatchError{
			Record:   NameListRecord,
			Expected: result.Header.NumImages,
			Actual:   len(names),
		}
	}
	return &Reconstruction{BundleResult: result, Images: names}, nil
}
