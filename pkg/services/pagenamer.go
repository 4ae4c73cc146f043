package services

import (
	"strconv"
	"strings"
)

// PageName returns the file name for the page at index: "{index}.{ext}" where
// ext is whatever follows the last "." in url. With no usable extension the
// name is the bare index.
func PageName(url string, index int) string {
	name := strconv.Itoa(index)

	dot := strings.LastIndex(url, ".")
	if dot < 0 {
		return name
	}
	ext := url[dot+1:]
	// The last dot sits in the host or a directory, not the file.
	if strings.ContainsAny(ext, `/\`) {
		return name
	}
	return name + "." + ext
}
