package entity

// RawReply is a reply payload as returned by a social network adapter. The
// shape differs between endpoints and SDKs, so it is one of MappingReply,
// StructuredReply or OpaqueReply.
type RawReply interface {
	rawReply()
}

// MappingReply is a decoded JSON object.
type MappingReply map[string]any

// StructuredReply is a typed reply object.
type StructuredReply struct {
	Hash    string
	Text    string
	Content *ReplyContent
	Author  *ReplyAuthor
}

type ReplyContent struct {
	Text string
}

type ReplyAuthor struct {
	FID         int64
	Username    string
	DisplayName string
	Fname       string
}

// OpaqueReply is a free-form textual rendering of a reply.
type OpaqueReply string

func (MappingReply) rawReply()    {}
func (StructuredReply) rawReply() {}
func (OpaqueReply) rawReply()     {}
