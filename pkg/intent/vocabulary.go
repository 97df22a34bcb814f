package intent

import "regexp"

// DefaultClarificationQuestion is asked when an utterance mentions the notebook
// but does not say whether it should be changed.
const DefaultClarificationQuestion = "您是想要修改筆記內容，還是只是想討論它呢？"

// DefaultSelectionWeight is how much each selection keyword adds to the edit score
// when the notebook has an active selection.
const DefaultSelectionWeight = 2

// Vocabulary holds the keyword and pattern tables the classifier scores against.
// Tables are plain data so a locale can ship its own set.
type Vocabulary struct {
	// Structural patterns, any match is a high-precision edit signal
	StrongEditPatterns []*regexp.Regexp

	// Substring keywords, matched case-insensitively
	EditKeywords      []string
	QueryKeywords     []string
	SelectionKeywords []string

	ClarificationQuestion string
}

// Thresholds are the score cut-offs and confidence formula constants.
type Thresholds struct {
	SelectionWeight int // Weight of each selection keyword hit (only with an active selection)

	PatternConfidence float64 // Confidence for a strong pattern match

	EditMinScore      int     // editScore >= this => NOTE_EDIT
	EditBase          float64 // Confidence = min(EditBase + EditStep*editScore, EditCap)
	EditStep          float64
	EditCap           float64
	QueryMinScore     int // queryScore >= this => NOTE_QUERY
	QueryBase         float64
	QueryStep         float64
	QueryCap          float64
	ClarifyScore      int // editScore == this => CLARIFY
	ClarifyConfidence float64
	ChatConfidence    float64
}

// DefaultThresholds returns the stock cut-offs
func DefaultThresholds() Thresholds {
	return Thresholds{
		SelectionWeight:   DefaultSelectionWeight,
		PatternConfidence: 0.95,
		EditMinScore:      2,
		EditBase:          0.7,
		EditStep:          0.1,
		EditCap:           0.95,
		QueryMinScore:     1,
		QueryBase:         0.6,
		QueryStep:         0.1,
		QueryCap:          0.9,
		ClarifyScore:      1,
		ClarifyConfidence: 0.5,
		ChatConfidence:    0.8,
	}
}

// Strong note-edit patterns. Chinese first, then English.
var strongEditPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)把.*(筆記|選取|這段|那段).*改`),
	regexp.MustCompile(`(?i)幫我.*(改|修改|編輯|重寫).*(筆記|選取)`),
	regexp.MustCompile(`(?i)(改|修改|編輯|重寫|更新).*(筆記|選取的|選中的)`),
	regexp.MustCompile(`(?i)筆記.*(加入|添加|刪除|移除)`),
	regexp.MustCompile(`(?i)將.*(改成|改為|轉換|翻譯)`),
	regexp.MustCompile(`(?i)(rewrite|edit|modify|update).*(note|notebook|selection)`),
	regexp.MustCompile(`(?i)(note|notebook).*(rewrite|edit|modify|update)`),
	regexp.MustCompile(`(?i)make.*(note|selection).*(shorter|longer|concise|bullet)`),
	regexp.MustCompile(`(?i)turn.*(into|to).*(bullet|list|summary)`),
	regexp.MustCompile(`(?i)translate.*(to|into)`),
}

var editKeywords = []string{
	// Chinese
	"筆記", "改筆記", "修改筆記", "編輯筆記", "更新筆記",
	"改成", "改為", "重寫", "改寫", "修改", "編輯",
	"加入", "刪除", "移除", "插入", "添加",
	"精簡", "擴展", "縮短", "延長",
	"翻譯", "轉換", "格式化",
	"條列", "條列式", "列點", "項目符號",
	"摘要", "總結", "概括",
	"選取", "選擇的", "選中的", "這段", "那段",
	// English
	"notebook", "note", "notes",
	"rewrite", "rephrase", "revise", "edit", "modify", "update",
	"summarize", "expand", "shorten", "condense",
	"translate", "convert", "format",
	"bullet", "bullets", "list",
	"selected", "selection", "this part", "that part",
	"add to note", "remove from note", "insert into note",
}

var queryKeywords = []string{
	// Chinese
	"筆記裡有什麼", "筆記內容", "筆記說什麼", "筆記提到",
	"查看筆記", "讀筆記", "看筆記",
	// English
	"what does the note say", "what is in the note", "read the note",
	"show note", "display note",
}

var selectionKeywords = []string{
	"選取", "選擇", "選中", "selected", "selection", "這段", "那段",
}

// DefaultVocabulary returns the bilingual (Traditional Chinese + English) tables.
// The returned slices are copies, callers may extend them freely.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		StrongEditPatterns:    append([]*regexp.Regexp(nil), strongEditPatterns...),
		EditKeywords:          append([]string(nil), editKeywords...),
		QueryKeywords:         append([]string(nil), queryKeywords...),
		SelectionKeywords:     append([]string(nil), selectionKeywords...),
		ClarificationQuestion: DefaultClarificationQuestion,
	}
}

// ReplyVocabulary lists the tokens that answer a pending clarification.
// Affirmatives are checked before negatives.
type ReplyVocabulary struct {
	EditAffirmatives []string
	DiscussNegatives []string
}

var editAffirmatives = []string{
	"是", "對", "改筆記", "修改", "編輯", "更新筆記",
	"yes", "yeah", "edit", "modify", "update note",
}

var discussNegatives = []string{
	"不", "不是", "不對", "只是討論", "只想問", "不用改", "不修改",
	"no", "just discuss", "just asking", "don't edit",
}

// DefaultReplyVocabulary returns the bilingual clarification reply tables
func DefaultReplyVocabulary() ReplyVocabulary {
	return ReplyVocabulary{
		EditAffirmatives: append([]string(nil), editAffirmatives...),
		DiscussNegatives: append([]string(nil), discussNegatives...),
	}
}
