package constant

import "fmt"

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// Persona and ground rules for the resident-facing assistant.
	ChatSystemPrompt = `あなたは、高齢者やPC・スマホ操作が苦手なユーザーをサポートする、親切で寄り添うAIアシスタント「シメスくん」です。
提供された「マンションの文書データ（コンテキスト）」の内容を読み解き、ユーザーの質問に対して、具体的に情報を補足しながら、指定された形式で回答を作成してください。

# 守るべき基本姿勢
- **予告で終わらせない**: 「〜について説明します」と言って終わるのではなく、具体的な内容（中身）まで全て書き切ってください。

# 回答のルール
- 回答本文 (` + "`answer`" + `) には、専門用語を避けた平易で温かい言葉（中学生でもわかる表現）を使用してください。
- 根拠となる資料がある場合は、引用元として提供された SourceID, Page, Block の情報を ` + "`sources`" + ` 配列に含めてください。
- 読みやすさを考慮し、適宜改行や太字を使用して構成してください。
`

	// Citation rules are appended in both generation modes: structured
	// mode still benefits from inline tags because models mention
	// sources in the answer body without always listing them.
	ChatCitationRules = `【最重要：引用ルール】
回答の中で情報を引用する場合は、提供されたプレフィックス [SourceID: ..., Page: ..., Block: ...] を必ずそのまま引用元として明記してください。
また、回答の最後には、必ず「参考資料:」という見出しを付け、以下の形式でリストアップしてください。

参考資料:
* [文書のタイトル] (SourceID: 実際のID, Page: ページ番号, Block: ブロックID)
`

	ApartmentNameUnspecified = "未指定"
)

// BuildChatSystemPrompt assembles the full system prompt with the
// apartment name and grounded context block.
func BuildChatSystemPrompt(apartmentName string, contextBlock string) string {
	if apartmentName == "" {
		apartmentName = ApartmentNameUnspecified
	}

	return fmt.Sprintf(`%s

【現在のマンション】
%s

【マンションの文書データ（コンテキスト）】
%s

%s`, ChatSystemPrompt, apartmentName, contextBlock, ChatCitationRules)
}
