package conversation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
)

var _ = Describe("Conversation", func() {
	It("seals the user message when a session begins", func() {
		c := conversation.New("", nil)
		s, err := c.Begin("hello")
		Expect(err).NotTo(HaveOccurred())

		msgs := c.Transcript().Messages()
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].Role).To(Equal(conversation.RoleUser))
		Expect(msgs[0].Content).To(Equal("hello"))
		Expect(s.Turn()).To(Equal(msgs))
	})

	It("rejects a second session while one is streaming", func() {
		c := conversation.New("", nil)
		_, err := c.Begin("first")
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Active()).To(BeTrue())

		_, err = c.Begin("second")
		Expect(err).To(MatchError(conversation.ErrSessionActive))
		Expect(c.Transcript().Len()).To(Equal(1))
	})

	It("allows a new session once the previous one ended", func() {
		c := conversation.New("", nil)
		s, err := c.Begin("first")
		Expect(err).NotTo(HaveOccurred())
		s.Apply(meta("room-1"))
		s.Apply(content("answer"))
		s.Complete()

		Expect(c.Active()).To(BeFalse())
		Expect(c.RoomID()).To(Equal("room-1"))

		next, err := c.Begin("second")
		Expect(err).NotTo(HaveOccurred())
		Expect(next.RoomID()).To(Equal("room-1"))
		Expect(c.Transcript().Len()).To(Equal(3))
	})

	It("returns the sealed turn in order", func() {
		c := conversation.New("r", conversation.NewTranscript())
		s, err := c.Begin("question")
		Expect(err).NotTo(HaveOccurred())
		s.Apply(content("answer"))
		s.Complete()

		turn := s.Turn()
		Expect(turn).To(HaveLen(2))
		Expect(turn[0].Role).To(Equal(conversation.RoleUser))
		Expect(turn[1].Role).To(Equal(conversation.RoleAssistant))
		Expect(turn[1].Content).To(Equal("answer"))
	})

	It("resumes with previously stored messages", func() {
		prior := conversation.NewTranscript(
			conversation.Message{ID: "1", Role: conversation.RoleUser, Content: "q"},
			conversation.Message{ID: "2", Role: conversation.RoleAssistant, Content: "a"},
		)
		c := conversation.New("room-9", prior)
		Expect(c.Transcript().Len()).To(Equal(2))
		Expect(c.RoomID()).To(Equal("room-9"))
	})
})
