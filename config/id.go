package config

import (
	"fmt"
	"math/rand"
	"time"
)

const randTrailerCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomTrailer returns a random lowercase-alphanumeric string of the given
// length, used to build unique upload ids and object key suffixes.
func RandomTrailer(length int) string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	res := make([]byte, length)
	for i := 0; i < length; i++ {
		res[i] = randTrailerCharset[r.Intn(len(randTrailerCharset))]
	}
	return string(res)
}

// GenerateUploadID builds the `upload-<ms>-<rand9>` id used when the HTTP
// upload request omits one (spec §6).
func GenerateUploadID(now time.Time) string {
	return fmt.Sprintf("upload-%d-%s", now.UnixMilli(), RandomTrailer(9))
}
