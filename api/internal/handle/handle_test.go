package handle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/lesson"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/logger"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/output"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/prompt"
)

type fakeFetcher struct {
	res  lesson.Result
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) lesson.Result {
	f.urls = append(f.urls, u)
	return f.res
}

func newHandle(t *testing.T, stub *llm.Stub, f ContextFetcher, strict bool) *Handle {
	t.Helper()
	stub.EngineName = "gpt"
	engs := llm.NewEngines("gpt")
	engs.Register(stub)
	v, err := output.NewValidator()
	require.NoError(t, err)
	return New(engs, v, f, logger.Nop(), strict)
}

func post(t *testing.T, fn http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

// --- writing feedback ---

func TestWritingFeedback_RoundTrip(t *testing.T) {
	const literal = `{"corrected_text":"Hi.","key_issues":[],"rewrite_suggestions":[],"quick_tips":[]}`
	stub := llm.NewStub(literal)
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.WritingFeedback, `{"text":"hi","level":"a1","stepName":"greetings"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, literal, strings.TrimSpace(rec.Body.String()))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	call, ok := stub.LastCall()
	require.True(t, ok)
	assert.Contains(t, call.System, "CEFR level is A1")
	assert.Contains(t, call.System, `"greetings"`)
	assert.Equal(t, llm.FormatJSON, call.Format)
	assert.Nil(t, call.Schema)
}

func TestWritingFeedback_StrictSchema(t *testing.T) {
	stub := llm.NewStub(`{"corrected_text":"Hi.","key_issues":[],"rewrite_suggestions":[],"quick_tips":[]}`)
	h := newHandle(t, stub, nil, true)

	rec := post(t, h.WritingFeedback, `{"text":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	call, _ := stub.LastCall()
	assert.Equal(t, llm.FormatSchema, call.Format)
	require.NotNil(t, call.Schema)
	assert.True(t, call.Schema.Strict)
	assert.Contains(t, call.System, "CEFR level is B2")
}

func TestJSONEndpoints_NotJSON(t *testing.T) {
	h := newHandle(t, llm.NewStub("not json"), nil, false)

	tests := []struct {
		name string
		fn   http.HandlerFunc
		body string
	}{
		{"writing feedback", h.WritingFeedback, `{"text":"hi"}`},
		{"vocabulary", h.Vocabulary, `{"words":["brave"]}`},
		{"sentences feedback", h.SentencesFeedback, `{"items":[{"word":"brave","sentences":["a","b"]}]}`},
		{"resume score", h.ResumeScore, `{"drafts":["a"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, tt.fn, tt.body)
			require.Equal(t, http.StatusBadGateway, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "not json", body["raw"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestWritingFeedback_InvalidUTF8(t *testing.T) {
	raw := `{"corrected_text":"caf` + "\xff" + `","key_issues":[],"rewrite_suggestions":[],"quick_tips":[]}`
	h := newHandle(t, llm.NewStub(raw), nil, false)

	rec := post(t, h.WritingFeedback, `{"text":"cafe"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWritingFeedback_BadInput(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"missing text", `{"level":"B1"}`, "text is required"},
		{"blank text", `{"text":"   "}`, "text is required"},
		{"text not a string", `{"text":42}`, "bad json"},
		{"malformed", `{"text":`, "bad json"},
		{"empty body", ``, "empty request body"},
		{"unknown engine", `{"text":"hi","llm_name":"mistral"}`, "unknown llm_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := llm.NewStub("{}")
			h := newHandle(t, stub, nil, false)

			rec := post(t, h.WritingFeedback, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec)["error"], tt.want)
			assert.Empty(t, stub.Calls())
		})
	}
}

func TestWritingFeedback_BodyTooLarge(t *testing.T) {
	stub := llm.NewStub("{}")
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.WritingFeedback, `{"text":"`+strings.Repeat("a", maxBody)+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "exceeds")
	assert.Empty(t, stub.Calls())
}

func TestWritingFeedback_UpstreamError(t *testing.T) {
	stub := llm.NewStub("")
	stub.Err = errors.New("connection reset by peer")
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.WritingFeedback, `{"text":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "connection reset by peer")
	_, hasRaw := body["raw"]
	assert.False(t, hasRaw)
}

func TestWritingFeedback_UnexpectedError(t *testing.T) {
	stub := &llm.Stub{Fn: func(llm.Request) (string, error) { return "", errors.New("boom") }}
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.WritingFeedback, `{"text":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", decodeBody(t, rec)["error"])
}

// --- vocabulary ---

const twoWords = `[
	{"word":"brave","definition":"ready to face danger","synonyms":["bold"],"examples":["She was brave."],"collocations":["brave face"]},
	{"word":"zeal","definition":"great energy","synonyms":["passion"],"examples":["He worked with zeal."],"collocations":["religious zeal"],"translations":{"es":"celo"}}
]`

func TestVocabulary_InjectsTranslations(t *testing.T) {
	stub := llm.NewStub(twoWords)
	h := newHandle(t, stub, nil, true)

	rec := post(t, h.Vocabulary, `{"words":["brave"," Brave ","zeal",""],"level":"c1","nativeLanguageCode":"es"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Contains(t, it, "translations")
	}
	assert.Equal(t, map[string]any{}, items[0]["translations"])
	assert.Equal(t, map[string]any{"es": "celo"}, items[1]["translations"])

	call, _ := stub.LastCall()
	assert.Equal(t, llm.FormatText, call.Format)
	assert.Contains(t, call.Messages[0].Content, `"words": [
    "brave",
    "zeal"
  ]`)
}

func TestVocabulary_LengthMismatch(t *testing.T) {
	h := newHandle(t, llm.NewStub(twoWords), nil, false)

	rec := post(t, h.Vocabulary, `{"words":["brave","zeal","grit"]}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, twoWords, decodeBody(t, rec)["raw"])
}

func TestVocabulary_NotArray(t *testing.T) {
	raw := `{"word":"brave"}`
	h := newHandle(t, llm.NewStub(raw), nil, false)

	rec := post(t, h.Vocabulary, `{"words":["brave"]}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, raw, decodeBody(t, rec)["raw"])
}

func TestVocabulary_EmptyWords(t *testing.T) {
	for _, body := range []string{`{}`, `{"words":[]}`, `{"words":[" ",""]}`} {
		stub := llm.NewStub(twoWords)
		h := newHandle(t, stub, nil, false)

		rec := post(t, h.Vocabulary, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Empty(t, stub.Calls(), body)
	}
}

func TestVocabulary_LanguageCodes(t *testing.T) {
	stub := llm.NewStub(`[{"word":"brave","definition":"d","synonyms":[],"examples":[],"collocations":[],"translations":{}}]`)
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.Vocabulary, `{"words":["brave"],"nativeLanguageCode":"pt_br","nativeLanguageCodes":["es","PT-BR","not a code"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	call, _ := stub.LastCall()
	assert.Contains(t, call.System, "exactly these locale codes: es, pt-BR.")
}

// --- sentences feedback ---

const sentencesResult = `{"results":[{"word":"brave","sentences":[
	{"original":"She brave.","corrected":"She is brave.","issues":["missing verb"],"tips":[]},
	{"original":"A brave dog.","corrected":"A brave dog.","issues":[],"tips":[]}
],"overall_tips":["Use brave before a noun or after be."]}]}`

func TestSentencesFeedback_DropsInvalidItems(t *testing.T) {
	stub := llm.NewStub(sentencesResult)
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.SentencesFeedback, `{"items":[
		{"word":"brave","sentences":["She brave.","A brave dog."]},
		{"word":"zeal","sentences":["Only one."]},
		{"word":"grit","sentences":["One.","  "]},
		{"word":" ","sentences":["One.","Two."]}
	]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, sentencesResult, rec.Body.String())

	call, _ := stub.LastCall()
	user := call.Messages[0].Content
	assert.Contains(t, user, `"brave"`)
	assert.NotContains(t, user, "zeal")
	assert.NotContains(t, user, "grit")
}

func TestSentencesFeedback_NoValidItems(t *testing.T) {
	for _, body := range []string{
		`{"items":[]}`,
		`{}`,
		`{"items":[{"word":"zeal","sentences":["Only one."]}]}`,
		`{"items":[{"word":"zeal","sentences":["One.","Two.","Three."]}]}`,
	} {
		stub := llm.NewStub(sentencesResult)
		h := newHandle(t, stub, nil, false)

		rec := post(t, h.SentencesFeedback, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Empty(t, stub.Calls(), body)
	}
}

func TestSentencesFeedback_ResultCounts(t *testing.T) {
	review := `{"original":"a","corrected":"a","issues":[],"tips":[]}`
	tests := []struct {
		name, raw string
	}{
		{"extra result", `{"results":[` +
			`{"word":"run","sentences":[` + review + `,` + review + `],"overall_tips":[]},` +
			`{"word":"zzz","sentences":[` + review + `,` + review + `],"overall_tips":[]}]}`},
		{"missing result", `{"results":[]}`},
		{"one review", `{"results":[{"word":"run","sentences":[` + review + `],"overall_tips":[]}]}`},
		{"no reviews", `{"results":[{"word":"run","sentences":[],"overall_tips":[]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandle(t, llm.NewStub(tt.raw), nil, true)

			rec := post(t, h.SentencesFeedback, `{"items":[{"word":"run","sentences":["I run.","He runs."]}]}`)
			require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
			assert.Equal(t, tt.raw, decodeBody(t, rec)["raw"])
		})
	}
}

// --- resume score ---

const resumeResult = `{"summary":"Good work.","score_total":80,"breakdown":{"grammar":20,"clarity":20,"vocabulary":20,"improvement":20},"next_steps":["Read more."]}`

func TestResumeScore_DraftShapesAreEquivalent(t *testing.T) {
	prompts := make([]string, 0, 2)
	for _, body := range []string{
		`{"drafts":["a","b"],"newWords":["brave"],"level":"B1"}`,
		`{"writing1":"a","writing2":"b","writing100":"","newWords":["brave"],"level":"B1"}`,
	} {
		stub := llm.NewStub(resumeResult)
		h := newHandle(t, stub, nil, false)

		rec := post(t, h.ResumeScore, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, resumeResult, rec.Body.String())

		call, _ := stub.LastCall()
		prompts = append(prompts, call.Messages[0].Content)
	}
	assert.Equal(t, prompts[0], prompts[1])
	assert.Contains(t, prompts[0], `"drafts": [
    "a",
    "b"
  ]`)
}

func TestResumeScore_Normalize(t *testing.T) {
	req := ResumeRequest{Drafts: []string{" ", ""}, Writing1: " first ", Writing100: "third"}
	req.normalize()
	assert.Equal(t, []string{"first", "third"}, req.Drafts)
	assert.NotNil(t, req.SentencesByWord)
}

func TestResumeScore_OutOfRange(t *testing.T) {
	raw := strings.Replace(resumeResult, `"score_total":80`, `"score_total":180`, 1)
	h := newHandle(t, llm.NewStub(raw), nil, false)

	rec := post(t, h.ResumeScore, `{"drafts":["a"]}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, raw, decodeBody(t, rec)["raw"])
}

func TestResumeScore_MalformedBody(t *testing.T) {
	stub := llm.NewStub(resumeResult)
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.ResumeScore, `{"drafts":"a"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.Calls())
}

// --- conversation ---

func TestConversation_EmptyHistory(t *testing.T) {
	stub := llm.NewStub("  Hello! What did you do last weekend?  ")
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.Conversation, `{"level":"a2","messages":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hello! What did you do last weekend?", resp.Reply)
	assert.Equal(t, "A2", string(resp.Level))
	assert.Equal(t, ContextInfo{Source: SourceNone}, resp.Context)

	call, _ := stub.LastCall()
	require.Len(t, call.Messages, 1)
	assert.Equal(t, llm.RoleUser, call.Messages[0].Role)
	assert.Equal(t, prompt.OpeningInstruction, call.Messages[0].Content)
	assert.Contains(t, call.Messages[0].Content, "ask one open question")
	assert.Equal(t, llm.FormatText, call.Format)
}

func TestConversation_BadInput(t *testing.T) {
	for _, body := range []string{
		`{"messages":[]}`,
		`{"level":"","messages":[]}`,
		`{"level":"B1"}`,
		`{"level":"B1","messages":null}`,
	} {
		stub := llm.NewStub("hi")
		f := &fakeFetcher{}
		h := newHandle(t, stub, f, false)

		rec := post(t, h.Conversation, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Empty(t, stub.Calls(), body)
		assert.Empty(t, f.urls, body)
	}
}

func TestConversation_History(t *testing.T) {
	var msgs []string
	for i := 0; i < 25; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msgs = append(msgs, `{"role":"`+role+`","content":"turn `+string(rune('a'+i))+`"}`)
	}
	msgs = append(msgs, `{"role":"system","content":"  "}`, `{"role":"tutor","content":"last"}`)
	stub := llm.NewStub("Nice!")
	h := newHandle(t, stub, nil, false)

	rec := post(t, h.Conversation, `{"level":"B1","messages":[`+strings.Join(msgs, ",")+`]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	call, _ := stub.LastCall()
	require.Len(t, call.Messages, maxHistory)
	last := call.Messages[len(call.Messages)-1]
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "last"}, last)
	assert.Equal(t, "turn g", call.Messages[0].Content)
}

func TestConversation_LessonContext(t *testing.T) {
	f := &fakeFetcher{res: lesson.Result{OK: true, Title: "A phone call", Description: "Listen to a phone call."}}
	stub := llm.NewStub("Hi! Who do you call most often?")
	h := newHandle(t, stub, f, false)

	rec := post(t, h.Conversation, `{"level":"B1","messages":[],"lesson_url":"https://learnenglish.britishcouncil.org/x","topicResume":"Phone calls"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ContextInfo{Source: SourceLesson, OK: true, Title: "A phone call", Description: "Listen to a phone call."}, resp.Context)
	assert.Equal(t, []string{"https://learnenglish.britishcouncil.org/x"}, f.urls)

	call, _ := stub.LastCall()
	assert.Contains(t, call.System, "Title: A phone call")
	assert.NotContains(t, call.System, "Lesson topic summary")
}

func TestConversation_FetchFailureFallsBack(t *testing.T) {
	f := &fakeFetcher{res: lesson.Result{Reason: lesson.ReasonFetchFailed}}
	stub := llm.NewStub("Let's talk about phone calls. Do you like them?")
	h := newHandle(t, stub, f, false)

	rec := post(t, h.Conversation, `{"level":"B1","messages":[{"role":"user","content":"Hi"}],"lessonUrl":"https://learnenglish.britishcouncil.org/x","topicResume":"Phone calls","vocabulary":["dial","Dial","hang up"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ContextInfo{Source: SourceTopic, Reason: lesson.ReasonFetchFailed}, resp.Context)

	call, _ := stub.LastCall()
	assert.Contains(t, call.System, "Lesson topic summary: Phone calls")
	assert.Contains(t, call.System, "dial, hang up.")
}

type countingTransport struct{ calls atomic.Int32 }

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, io.ErrUnexpectedEOF
}

func TestConversation_DisallowedURL(t *testing.T) {
	rt := &countingTransport{}
	stub := llm.NewStub("Hello!")
	h := newHandle(t, stub, lesson.NewFetcher(rt, time.Second), false)

	rec := post(t, h.Conversation, `{"level":"B1","messages":[],"url":"https://evil.example.com/x"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ContextInfo{Source: SourceNone, Reason: lesson.ReasonInvalidURL}, resp.Context)
	assert.Equal(t, int32(0), rt.calls.Load())
}

func TestConversation_EmptyReply(t *testing.T) {
	h := newHandle(t, llm.NewStub(" \n "), nil, false)

	rec := post(t, h.Conversation, `{"level":"B1","messages":[]}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, " \n ", decodeBody(t, rec)["raw"])
}

// --- health ---

func TestHealth(t *testing.T) {
	h := newHandle(t, llm.NewStub(""), nil, false)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"providers":["gpt"]}`, rec.Body.String())
}
