package conversation_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/chatstream"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
)

func meta(id string) chatstream.Frame {
	return chatstream.Frame{Kind: chatstream.FrameMeta, ChatRoomID: id}
}

func content(s string) chatstream.Frame {
	return chatstream.Frame{Kind: chatstream.FrameContent, Content: s}
}

func serverError(msg string) chatstream.Frame {
	return chatstream.Frame{Kind: chatstream.FrameError, ErrorMessage: msg}
}

var _ = Describe("Session", func() {
	var (
		transcript *conversation.Transcript
		fixed      time.Time
		clock      conversation.SessionOption
	)

	BeforeEach(func() {
		transcript = conversation.NewTranscript()
		fixed = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
		clock = conversation.WithClock(func() time.Time { return fixed })
	})

	Describe("meta frames", func() {
		It("keeps the first room id", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Apply(meta("A"))
			s.Apply(content("x"))
			s.Apply(meta("B"))
			Expect(s.RoomID()).To(Equal("A"))
		})

		It("keeps a room id supplied up front", func() {
			s := conversation.NewSession(transcript, "existing", clock)
			s.Apply(meta("A"))
			Expect(s.RoomID()).To(Equal("existing"))
		})

		It("accepts meta after content", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Apply(content("early"))
			s.Apply(meta("late"))
			Expect(s.RoomID()).To(Equal("late"))
			Expect(s.Content()).To(Equal("early"))
		})
	})

	Describe("content frames", func() {
		It("concatenates fragments into the assistant message", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Apply(content("Hel"))
			s.Apply(content("lo"))

			open, ok := s.Open()
			Expect(ok).To(BeTrue())
			Expect(open.Content).To(Equal("Hello"))
			Expect(transcript.Len()).To(BeZero())

			s.Complete()
			Expect(s.State()).To(Equal(conversation.StateCompleted))
			Expect(s.Err()).NotTo(HaveOccurred())

			last, ok := transcript.Last()
			Expect(ok).To(BeTrue())
			Expect(last.Role).To(Equal(conversation.RoleAssistant))
			Expect(last.Content).To(Equal("Hello"))
			Expect(last.Timestamp).To(Equal(fixed))
			Expect(last.ID).NotTo(BeEmpty())
		})

		It("mirrors fragments to the content hook in order", func() {
			var seen []string
			s := conversation.NewSession(transcript, "", clock,
				conversation.WithContentHook(func(f string) { seen = append(seen, f) }))
			s.Apply(content("a"))
			s.Apply(content(""))
			s.Apply(content("b"))
			Expect(seen).To(Equal([]string{"a", "b"}))
		})

		It("ignores unknown frames", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Apply(chatstream.Frame{Kind: chatstream.FrameUnknown})
			s.Apply(content("ok"))
			s.Complete()
			Expect(s.Content()).To(Equal("ok"))
			Expect(s.Frames()).To(Equal(2))
		})
	})

	Describe("error frames", func() {
		It("replaces an empty placeholder with a notice", func() {
			s := conversation.NewSession(transcript, "", clock,
				conversation.WithNoticeFormatter(func(m string) string { return "Error: " + m }))
			s.Apply(serverError("quota exceeded"))

			Expect(s.State()).To(Equal(conversation.StateErrored))
			var serr *conversation.ServerError
			Expect(errors.As(s.Err(), &serr)).To(BeTrue())
			Expect(serr.Message).To(Equal("quota exceeded"))

			msgs := transcript.Messages()
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(conversation.RoleAssistant))
			Expect(msgs[0].Content).To(Equal("Error: quota exceeded"))
		})

		It("keeps partial content and reports the error out of band", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Apply(content("Partial"))
			s.Apply(serverError("boom"))

			msgs := transcript.Messages()
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Content).To(Equal("Partial"))
			Expect(s.Err()).To(MatchError(ContainSubstring("boom")))
		})

		It("ignores frames after the session ended", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Apply(serverError("boom"))
			s.Apply(content("late"))
			s.Complete()
			Expect(s.State()).To(Equal(conversation.StateErrored))
			Expect(s.Content()).To(BeEmpty())
			Expect(transcript.Len()).To(Equal(1))
		})
	})

	Describe("Fail", func() {
		It("removes an empty placeholder", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Fail(errors.New("connection reset"))
			Expect(s.State()).To(Equal(conversation.StateErrored))
			Expect(s.Err()).To(MatchError("connection reset"))
			Expect(transcript.Len()).To(BeZero())
			_, ok := s.Open()
			Expect(ok).To(BeFalse())
		})

		It("preserves content that already streamed", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Apply(content("half an ans"))
			s.Fail(errors.New("connection reset"))
			last, _ := transcript.Last()
			Expect(last.Content).To(Equal("half an ans"))
		})
	})

	Describe("Cancel", func() {
		It("freezes the partial answer", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Apply(content("Partial"))
			s.Cancel()
			s.Apply(content(" more"))

			Expect(s.State()).To(Equal(conversation.StateCancelled))
			Expect(s.Err()).NotTo(HaveOccurred())
			last, _ := transcript.Last()
			Expect(last.Content).To(Equal("Partial"))
			Expect(transcript.Len()).To(Equal(1))
		})

		It("drops an empty placeholder", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Cancel()
			Expect(transcript.Len()).To(BeZero())
		})
	})

	Describe("Complete", func() {
		It("drops an empty answer", func() {
			s := conversation.NewSession(transcript, "", clock)
			s.Complete()
			Expect(s.State()).To(Equal(conversation.StateCompleted))
			Expect(transcript.Len()).To(BeZero())
		})
	})
})

var _ = Describe("State", func() {
	It("names states", func() {
		Expect(conversation.StateStreaming.String()).To(Equal("streaming"))
		Expect(conversation.StateCompleted.String()).To(Equal("completed"))
		Expect(conversation.StateErrored.String()).To(Equal("errored"))
		Expect(conversation.StateCancelled.String()).To(Equal("cancelled"))
	})

	It("marks only streaming as non-terminal", func() {
		Expect(conversation.StateStreaming.Terminal()).To(BeFalse())
		Expect(conversation.StateCompleted.Terminal()).To(BeTrue())
		Expect(conversation.StateErrored.Terminal()).To(BeTrue())
		Expect(conversation.StateCancelled.Terminal()).To(BeTrue())
	})
})
