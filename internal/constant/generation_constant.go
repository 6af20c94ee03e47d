package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	GenerationKindSummary    = "summary"
	GenerationKindQuiz       = "quiz"
	GenerationKindFlashcards = "flashcards"
	GenerationKindChat       = "chat"

	ExtractionMethodDirect = "direct"
	ExtractionMethodOCR    = "ocr"

	DocumentStatusProcessing = "processing"
	DocumentStatusProcessed  = "processed"
	DocumentStatusError      = "error"

	// Content bounds enforced before any provider call.
	MinContentChars = 20
	MaxContentChars = 1_000_000

	// Direct PDF extraction below this many characters is treated as a
	// scanned document and routed through OCR.
	TextLayerThreshold = 100

	// Quiz sizing when no explicit count is given: 3 questions per 10k
	// characters, clamped to [8, 30].
	QuizQuestionsPer10kChars = 3
	QuizMinQuestions         = 8
	QuizMaxQuestions         = 30

	DefaultNumFlashcards = 12
	DefaultSummaryLength = 500

	// Chat session titles are derived from the first user message.
	DefaultChatTitle  = "New Chat"
	ChatTitleMaxChars = 50

	PersistTranscriptTopic = "CHAT_PERSIST_TRANSCRIPT"
	PersistResultTopic     = "GENERATION_PERSIST_RESULT"

	SummarySystemPrompt = "You are an expert at creating concise, informative summaries for educational content."
	QuizSystemPrompt    = "You are an expert educator creating quiz questions for educational content. Follow the requested output format exactly."
	CardSystemPrompt    = "You are an expert educator creating flashcards for effective learning. Return valid JSON only."
	ChatSystemPrompt    = "You are a helpful AI assistant. Provide clear, concise, and accurate responses. Be brief and to the point."
)
