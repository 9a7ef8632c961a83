package storage

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ObjectKey names an upload as <unix-millis>-<random>.<ext>. The random
// suffix is r rendered in base 36; the extension comes from filename.
func ObjectKey(filename string, now time.Time, r uint64) string {
	key := strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.FormatUint(r, 36)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return key
	}
	return key + "." + ext
}
