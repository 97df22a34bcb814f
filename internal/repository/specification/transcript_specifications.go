package specification

import "gorm.io/gorm"

type ByConversationID struct {
	ConversationID string
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// AfterSeq keeps messages generated after the given sequence number
type AfterSeq struct {
	Seq int64
}

func (s AfterSeq) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("seq > ?", s.Seq)
}

func InLogOrder() Specification {
	return OrderBy{Field: "seq"}
}
