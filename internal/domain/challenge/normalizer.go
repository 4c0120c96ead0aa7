package challenge

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/persuade-agent/internal/client"
	"github.com/questx-lab/persuade-agent/internal/entity"
)

// ErrIncomplete is returned when a reply has no id or no text after every
// extraction step.
var ErrIncomplete = errors.New("reply is missing id or text")

// UnknownUsername is recorded for a reply whose author cannot be identified.
// It never resolves to an address.
const UnknownUsername = "unknown"

type NormalizedReply struct {
	ReplyID     string
	Text        string
	Username    string
	DisplayName string
	FID         int64
}

type replyPayload struct {
	Hash    string          `mapstructure:"hash"`
	Text    string          `mapstructure:"text"`
	Content *contentPayload `mapstructure:"content"`
	Author  *authorPayload  `mapstructure:"author"`
}

type contentPayload struct {
	Text string `mapstructure:"text"`
}

type authorPayload struct {
	FID              int64  `mapstructure:"fid"`
	Username         string `mapstructure:"username"`
	DisplayName      string `mapstructure:"display_name"`
	DisplayNameCamel string `mapstructure:"displayName"`
	Fname            string `mapstructure:"fname"`
}

var (
	quotedHashRegex   = regexp.MustCompile(`hash=['"]([^'"]+)['"]`)
	bareHashRegex     = regexp.MustCompile(`hash=([^\s,'")]+)`)
	hexHashRegex      = regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`)
	bareHexRegex      = regexp.MustCompile(`^0x[a-fA-F0-9]+$`)
	textRegex         = regexp.MustCompile(`text=(?:'((?:[^'\\]|\\.)*)'|"((?:[^"\\]|\\.)*)")`)
	usernameRegex     = regexp.MustCompile(`username=['"]([^'"]+)['"]`)
	displayNameRegex  = regexp.MustCompile(`display_?[nN]ame=['"]([^'"]+)['"]`)
	fidRegex          = regexp.MustCompile(`fid=(\d+)`)
	escapedQuoteRegex = regexp.MustCompile(`\\(['"\\])`)
)

// Normalize converts a reply of any known shape into a NormalizedReply. It
// reads direct fields first, then content.text, then the author chain, and
// only scans free-form text with patterns as the last resort.
func Normalize(raw entity.RawReply) (NormalizedReply, error) {
	var reply NormalizedReply

	switch t := raw.(type) {
	case entity.MappingReply:
		reply = normalizeMapping(t)
	case entity.StructuredReply:
		reply = normalizeStructured(t)
	case entity.OpaqueReply:
		if m, ok := parseJSONObject(string(t)); ok {
			reply = normalizeMapping(m)
		} else {
			reply = normalizeOpaque(string(t))
		}
	case nil:
		return NormalizedReply{}, ErrIncomplete
	default:
		return NormalizedReply{}, fmt.Errorf("unknown reply type %T", raw)
	}

	if reply.ReplyID == "" || strings.TrimSpace(reply.Text) == "" {
		return reply, ErrIncomplete
	}

	return reply, nil
}

// ExtractID returns the id of a post result whose shape is unknown.
func ExtractID(raw entity.RawReply) (string, bool) {
	switch t := raw.(type) {
	case entity.MappingReply:
		return extractMappingID(t)

	case entity.StructuredReply:
		return t.Hash, t.Hash != ""

	case entity.OpaqueReply:
		s := strings.TrimSpace(string(t))
		if m, ok := parseJSONObject(s); ok {
			return extractMappingID(m)
		}

		if bareHexRegex.MatchString(s) {
			return s, true
		}

		id := extractOpaqueID(s)
		return id, id != ""
	}

	return "", false
}

func extractMappingID(m entity.MappingReply) (string, bool) {
	if hash, ok := m["hash"].(string); ok && hash != "" {
		return hash, true
	}

	// Publish results may wrap the post, e.g. {"success": true, "cast": {...}}.
	if cast, ok := m["cast"].(map[string]any); ok {
		return extractMappingID(cast)
	}

	return "", false
}

func normalizeMapping(m entity.MappingReply) NormalizedReply {
	payload := replyPayload{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err == nil {
		// A field with an unexpected type is left empty, the others are kept.
		_ = decoder.Decode(map[string]any(m))
	}

	reply := NormalizedReply{
		ReplyID: payload.Hash,
		Text:    payload.Text,
	}

	if strings.TrimSpace(reply.Text) == "" && payload.Content != nil {
		reply.Text = payload.Content.Text
	}

	if payload.Author != nil {
		displayName := payload.Author.DisplayName
		if displayName == "" {
			displayName = payload.Author.DisplayNameCamel
		}

		reply.DisplayName = displayName
		reply.FID = payload.Author.FID
		reply.Username = authorName(payload.Author.Username, displayName, payload.Author.Fname, payload.Author.FID)
	}

	return reply
}

func normalizeStructured(s entity.StructuredReply) NormalizedReply {
	reply := NormalizedReply{
		ReplyID: s.Hash,
		Text:    s.Text,
	}

	if strings.TrimSpace(reply.Text) == "" && s.Content != nil {
		reply.Text = s.Content.Text
	}

	if s.Author != nil {
		reply.DisplayName = s.Author.DisplayName
		reply.FID = s.Author.FID
		reply.Username = authorName(s.Author.Username, s.Author.DisplayName, s.Author.Fname, s.Author.FID)
	}

	return reply
}

func normalizeOpaque(s string) NormalizedReply {
	reply := NormalizedReply{ReplyID: extractOpaqueID(s)}

	if match := textRegex.FindStringSubmatch(s); match != nil {
		text := match[1]
		if text == "" {
			text = match[2]
		}
		reply.Text = escapedQuoteRegex.ReplaceAllString(text, "$1")
	}

	if match := displayNameRegex.FindStringSubmatch(s); match != nil {
		reply.DisplayName = match[1]
	}

	if match := fidRegex.FindStringSubmatch(s); match != nil {
		reply.FID, _ = strconv.ParseInt(match[1], 10, 64)
	}

	username := ""
	if match := usernameRegex.FindStringSubmatch(s); match != nil {
		username = match[1]
	}
	reply.Username = authorName(username, reply.DisplayName, "", reply.FID)

	return reply
}

func extractOpaqueID(s string) string {
	if match := quotedHashRegex.FindStringSubmatch(s); match != nil {
		return match[1]
	}

	if match := bareHashRegex.FindStringSubmatch(s); match != nil {
		return match[1]
	}

	return hexHashRegex.FindString(s)
}

func authorName(username, displayName, fname string, fid int64) string {
	switch {
	case username != "":
		return username
	case displayName != "":
		return displayName
	case fname != "":
		return fname
	case fid != 0:
		return client.SyntheticUsernamePrefix + strconv.FormatInt(fid, 10)
	}

	return ""
}

func parseJSONObject(s string) (entity.MappingReply, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}

	m := map[string]any{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}

	return m, true
}
