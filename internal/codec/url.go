package codec

import (
	"fmt"
	"net/url"
)

// URL query parameters carrying share tokens.
const (
	ParamSave   = "save"
	ParamResult = "result"
)

// ShareLink holds the tokens found in a share URL.
type ShareLink struct {
	SaveToken   string
	ResultToken string
}

// Empty reports whether the URL carried no token.
func (l ShareLink) Empty() bool {
	return l.SaveToken == "" && l.ResultToken == ""
}

// ParseShareURL extracts the save and result tokens from raw.
func ParseShareURL(raw string) (ShareLink, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ShareLink{}, fmt.Errorf("codec: parse share url: %w", err)
	}
	q := u.Query()
	return ShareLink{
		SaveToken:   q.Get(ParamSave),
		ResultToken: q.Get(ParamResult),
	}, nil
}

// StripShareParams removes consumed share tokens from raw.
func StripShareParams(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("codec: parse share url: %w", err)
	}
	q := u.Query()
	q.Del(ParamSave)
	q.Del(ParamResult)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ShareURL appends token to base under param, replacing an existing value.
func ShareURL(base, param, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("codec: parse base url: %w", err)
	}
	q := u.Query()
	q.Set(param, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
