package conversation

import (
	"errors"

	"ragify-be/pkg/llm"
)

var (
	ErrTurnInFlight   = errors.New("a turn is already in flight for this conversation")
	ErrEmptyUtterance = errors.New("utterance is empty")
	ErrNoChatPort     = errors.New("router requires a chat port")
)

// Reply markers for notebook edits
const (
	EditSuccessMarker = "✏️ "
	EditFailureMarker = "❌ "
)

const (
	QuotaMessage               = "API 配額已用盡：免費層級每天限制 20 次請求。請稍後再試。"
	EditSafetyMessage          = "內容被安全過濾器阻擋：請檢查編輯指令或筆記內容。"
	ChatSafetyMessage          = "內容被安全過濾器阻擋：請換個方式描述您的問題。"
	EditFailurePrefix          = "編輯筆記失敗："
	ChatFailureMessage         = "抱歉，發生錯誤，無法取得回應。請確認 API 金鑰設定正確。"
	NotebookUnavailableMessage = "筆記編輯功能目前無法使用。請確保筆記面板已開啟。"
)

type FailureKind string

const (
	FailureQuota      FailureKind = "quota"
	FailureSafety     FailureKind = "safety"
	FailureGeneric    FailureKind = "generic"
	FailureNoNotebook FailureKind = "no_notebook"
)

// Categorize maps a collaborator error onto the user-facing failure categories
func Categorize(err error) FailureKind {
	switch {
	case llm.IsQuotaError(err):
		return FailureQuota
	case llm.IsSafetyError(err):
		return FailureSafety
	default:
		return FailureGeneric
	}
}

// EditFailureText is the message shown when a notebook edit could not run
func EditFailureText(err error) string {
	switch Categorize(err) {
	case FailureQuota:
		return QuotaMessage
	case FailureSafety:
		return EditSafetyMessage
	default:
		return EditFailurePrefix + err.Error()
	}
}

// ChatFailureText is the message shown when the chat collaborator failed
func ChatFailureText(err error) string {
	switch Categorize(err) {
	case FailureQuota:
		return QuotaMessage
	case FailureSafety:
		return ChatSafetyMessage
	default:
		return ChatFailureMessage
	}
}
