package integration

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/accesstbilq/jovian/pkg/chat"
	"github.com/accesstbilq/jovian/pkg/controllers"
	"github.com/accesstbilq/jovian/pkg/stream"
)

// captureSink records renders for assertions
type captureSink struct {
	mu      sync.Mutex
	updates []string
	done    []string
	errors  []string
}

func (c *captureSink) sink() stream.Sink {
	return stream.SinkFuncs{
		AgentUpdateFunc: func(content string) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.updates = append(c.updates, content)
		},
		AgentDoneFunc: func(content string) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.done = append(c.done, content)
		},
		AgentErrorFunc: func(content string) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.errors = append(c.errors, content)
		},
	}
}

func (c *captureSink) finalTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.done...)
}

func (c *captureSink) errorTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errors...)
}

func (c *captureSink) updateTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.updates...)
}

var _ = Describe("Chat streaming", func() {
	var (
		server     *fakeAgentServer
		sink       *captureSink
		controller *controllers.ChatController
	)

	submit := func(text string) {
		done := controller.Submit(context.Background(), text)
		Expect(done).NotTo(BeNil())
		Eventually(done, 5*time.Second).Should(BeClosed())
	}

	BeforeEach(func() {
		server = newFakeAgentServer()
		DeferCleanup(server.close)

		sink = &captureSink{}
		client := chat.NewClient(server.url() + "/api/chat")
		controller = controllers.NewChatController(client, sink.sink())
	})

	It("streams a full turn end to end", func() {
		server.script(200, 0, tokenRecords("Our flagship project is the portfolio RAG agent.")...)

		submit("what have you built?")

		Expect(server.seenMessages()).To(Equal([]string{"what have you built?"}))
		Expect(sink.finalTexts()).To(Equal([]string{"Our flagship project is the portfolio RAG agent."}))

		// Incremental updates each carry the full text so far.
		updates := sink.updateTexts()
		Expect(len(updates)).To(BeNumerically(">", 1))
		Expect(updates[len(updates)-1]).To(Equal("Our flagship project is the portfolio RAG agent."))
	})

	It("is independent of transport chunking", func() {
		server.script(200, 0, tokenRecords("Chunking must not change the result.")...)

		submit("one")
		oneShot := sink.finalTexts()[0]

		server.script(200, 3, tokenRecords("Chunking must not change the result.")...)
		submit("two")

		Expect(sink.finalTexts()[1]).To(Equal(oneShot))
	})

	It("survives multi-byte runes split across transport chunks", func() {
		server.script(200, 1,
			`{"type":"token","stream_id":"s1","node":"general_message","content":"The café’s ⚡ reply"}`,
			`{"type":"message","stream_id":"s1","node":"general_message","content":"The café’s ⚡ reply","complete":true}`,
		)

		submit("hello")

		Expect(sink.finalTexts()).To(Equal([]string{"The café’s ⚡ reply"}))
	})

	It("sends the same session id on every turn", func() {
		server.script(200, 0, tokenRecords("ok")...)

		submit("first")
		submit("second")

		sessions := server.seenSessions()
		Expect(sessions).To(HaveLen(2))
		Expect(sessions[0]).NotTo(BeEmpty())
		Expect(sessions[1]).To(Equal(sessions[0]))
		Expect(sessions[0]).To(Equal(controller.Session().ID))
	})

	It("renders the literal server error text on a non-2xx response", func() {
		server.script(500, 0)

		submit("hello")

		Expect(sink.errorTexts()).To(Equal([]string{controllers.ServerErrorText}))
		Expect(sink.finalTexts()).To(BeEmpty())
	})

	It("issues no request for whitespace-only input", func() {
		done := controller.Submit(context.Background(), "   \t ")
		Expect(done).To(BeNil())
		Expect(server.seenMessages()).To(BeEmpty())
	})

	It("ignores malformed records without losing the stream", func() {
		server.script(200, 0,
			`{"type":"token","node":"general_message","content":"before"}`,
			`{broken`,
			`{"type":"token","node":"general_message","content":" after"}`,
			`{"type":"message","node":"general_message","content":"before after","complete":true}`,
		)

		submit("hello")

		Expect(sink.finalTexts()).To(Equal([]string{"before after"}))
	})

	It("keeps the transcript in submission order", func() {
		server.script(200, 0, tokenRecords("reply")...)

		submit("first question")
		submit("second question")

		history := controller.History()
		Expect(history).To(HaveLen(4))
		Expect(history[0].Content).To(Equal("first question"))
		Expect(history[1].Content).To(Equal("reply"))
		Expect(history[2].Content).To(Equal("second question"))
	})
})
