package assistant

import (
	"fmt"
	"time"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// classifierSystemPrompt builds the system instruction for option
// classification. The tie-break rule keeps repeated calls deterministic when
// several options fit equally well.
func classifierSystemPrompt(optionsJSON string) string {
	return "OPTIONS (JSON array):\n" +
		optionsJSON + "\n" +
		"-------------------------------\n" +
		"INSTRUCTIONS:\n" +
		"1) INPUT: 'options' is a JSON array of Option objects, each with an \"id\" and a \"condition\".\n" +
		"2) TASK: Choose the single most suitable Option whose condition matches the user's message.\n" +
		"3) OUTPUT: Return only the id of the chosen Option. The id must be EXACTLY one of the ids in the OPTIONS array. Do NOT create, rename or merge options.\n" +
		"4) TIE-BREAKER: If multiple options are equally suitable, choose the one that appears earliest in the OPTIONS array.\n"
}

// transactionSystemPrompt builds the system instruction for transaction
// extraction. today anchors relative date phrases like "yesterday".
func transactionSystemPrompt(today time.Time) string {
	return "You are a helpful financial assistant.\n" +
		"Parse the user's message into a single transaction record.\n\n" +
		"Rules:\n" +
		fmt.Sprintf("- Today is %s. Resolve relative dates (\"yesterday\", \"last Friday\") against it.\n", today.Format(domain.DateFormat)) +
		"- \"amount\" is a plain number: strip currency symbols and expand shorthand (\"200k\" means 200000).\n" +
		"- \"type\" and \"category\" must be one of the allowed values; never output free text for them.\n" +
		"- If no description is stated, use an empty string.\n" +
		"- Never invent a transaction id.\n"
}

// criteriaSystemPrompt is the system instruction for search-criteria
// extraction. The strictness here is what keeps the extractor from
// fabricating filters the user never asked for.
const criteriaSystemPrompt = "You are a helpful financial assistant specialized in parsing search queries.\n" +
	"Parse the user's message into a search criteria object.\n\n" +
	"STRICT RULES:\n" +
	"- Never guess values.\n" +
	"- A field must only be filled if it is explicitly stated or can be directly inferred (e.g. \"yesterday\" fills both fromDate and toDate).\n" +
	"- If a field is not explicitly mentioned, set it to null.\n" +
	"- Do not assume a category, type, or description just because the message resembles a known pattern.\n"
