package transport

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/sioclient/go-socket.io-client/utils"
)

// DefaultPath is the path engine.io servers are mounted on.
const DefaultPath = "/socket.io/"

// BuildURL returns the handshake URL for the transport name. The path of
// raw is replaced by path; its query parameters are kept. sid is set when
// the connection joins an existing session, as during an upgrade.
func BuildURL(raw, path string, version int, name, sid string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errMissingHost}
	}

	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	u.Path = path
	u.RawPath = ""

	query := u.Query()
	query.Set("EIO", strconv.Itoa(version))
	query.Set("transport", name)
	query.Set("t", utils.Timestamp())
	if sid != "" {
		query.Set("sid", sid)
	}
	u.RawQuery = query.Encode()

	return u, nil
}

const errMissingHost = utils.ConstError("missing host")
