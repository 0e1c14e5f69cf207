package resolver

import "strings"

// parseDataURL parses a "data:" URI into its three parts (spec §4.F's
// DataUri request variant): the media type, the encoding ("base64" or
// ""), and the raw payload text. Adapted (not copied) from the teacher's
// dataurl.go: trimmed to the three fields the resolver actually threads
// through, dropping its decode-to-bytes helper since this engine only
// needs DataUri requests for pattern/reference purposes, never to inline
// the decoded bytes into a build output.
func parseDataURL(uri string) (mediaType, encoding, data string, ok bool) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", "", false
	}
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", "", "", false
	}
	meta, payload := rest[:comma], rest[comma+1:]

	if strings.HasSuffix(meta, ";base64") {
		return strings.TrimSuffix(meta, ";base64"), "base64", payload, true
	}
	return meta, "", payload, true
}
