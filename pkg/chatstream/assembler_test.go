package chatstream_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/chatstream"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
)

const sampleStream = "event: meta\n" +
	"data: {\"chatRoomId\": \"room-42\"}\n" +
	"\n" +
	"data: {\"content\": \"Hi \"}\n" +
	"data: {\"content\": \"there!\"}\n"

// feedAll feeds every chunk and finalizes, collecting frames and the first error.
func feedAll(a *chatstream.Assembler, chunks ...[]byte) ([]chatstream.Frame, error) {
	var frames []chatstream.Frame
	for _, chunk := range chunks {
		got, err := a.Feed(chunk)
		frames = append(frames, got...)
		if err != nil {
			return frames, err
		}
	}
	got, err := a.Finalize()
	frames = append(frames, got...)
	return frames, err
}

func kinds(frames []chatstream.Frame) []chatstream.FrameKind {
	out := make([]chatstream.FrameKind, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Kind)
	}
	return out
}

func contents(frames []chatstream.Frame) []string {
	var out []string
	for _, f := range frames {
		if f.Kind == chatstream.FrameContent {
			out = append(out, f.Content)
		}
	}
	return out
}

var _ = Describe("Assembler", func() {
	var a *chatstream.Assembler

	BeforeEach(func() {
		a = chatstream.NewAssembler(chatstream.WithLogger(logger.Nop()))
	})

	Describe("Feed", func() {
		It("decodes the end-to-end example", func() {
			frames, err := feedAll(a, []byte(sampleStream))
			Expect(err).NotTo(HaveOccurred())

			Expect(kinds(frames)).To(Equal([]chatstream.FrameKind{
				chatstream.FrameMeta,
				chatstream.FrameContent,
				chatstream.FrameContent,
			}))
			Expect(frames[0].ChatRoomID).To(Equal("room-42"))
			Expect(frames[0].Event.EventType).To(Equal("meta"))
			Expect(contents(frames)).To(Equal([]string{"Hi ", "there!"}))
			Expect(a.Content()).To(Equal("Hi there!"))
		})

		It("emits nothing for event lines on their own", func() {
			frames, err := a.Feed([]byte("event: meta\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(BeEmpty())
		})

		It("accumulates content across frames", func() {
			frames, err := feedAll(a, []byte("data: {\"content\":\"Hel\"}\ndata: {\"content\":\"lo\"}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"Hel", "lo"}))
			Expect(a.Content()).To(Equal("Hello"))
		})

		It("applies the sticky event type to the next data line only", func() {
			input := "event: meta\n" +
				"\n" +
				"data: {\"chatRoomId\":\"r1\"}\n" +
				"data: {\"content\":\"after meta\"}\n"
			frames, err := feedAll(a, []byte(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(frames)).To(Equal([]chatstream.FrameKind{chatstream.FrameMeta, chatstream.FrameContent}))
		})

		It("resets the sticky type even when the meta payload is malformed", func() {
			input := "event: meta\n" +
				"data: {not json\n" +
				"data: {\"content\":\"still content\"}\n"
			frames, err := feedAll(a, []byte(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"still content"}))
		})

		It("keeps the sticky type across empty data lines", func() {
			input := "event: meta\n" +
				"data: \n" +
				"data: {\"chatRoomId\":\"r1\"}\n"
			frames, err := feedAll(a, []byte(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(frames)).To(Equal([]chatstream.FrameKind{chatstream.FrameMeta}))
		})

		It("treats an explicitly empty event type as content", func() {
			frames, err := feedAll(a, []byte("event: \ndata: {\"content\":\"x\"}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"x"}))
		})

		It("accepts numeric room ids", func() {
			frames, err := feedAll(a, []byte("event: meta\ndata: {\"chatRoomId\": 1234}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(HaveLen(1))
			Expect(frames[0].ChatRoomID).To(Equal("1234"))
		})

		It("passes unknown event types through as unknown frames", func() {
			input := "event: usage\n" +
				"data: {\"tokens\": 12}\n" +
				"data: {\"content\":\"ok\"}\n"
			frames, err := feedAll(a, []byte(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(frames)).To(Equal([]chatstream.FrameKind{chatstream.FrameUnknown, chatstream.FrameContent}))
			Expect(frames[0].Event.EventType).To(Equal("usage"))
			Expect(frames[0].Event.RawPayload).To(Equal(`{"tokens": 12}`))
			Expect(a.Content()).To(Equal("ok"))
		})

		It("ignores lines it does not understand", func() {
			input := ": keep-alive\n" +
				"id: 7\n" +
				"retry: 3000\n" +
				"data: {\"content\":\"ok\"}\n"
			frames, err := feedAll(a, []byte(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"ok"}))
		})
	})

	Describe("chunk boundaries", func() {
		var whole []chatstream.Frame

		BeforeEach(func() {
			var err error
			whole, err = feedAll(chatstream.NewAssembler(), []byte(sampleStream))
			Expect(err).NotTo(HaveOccurred())
		})

		It("yields the same frames one byte at a time", func() {
			raw := []byte(sampleStream)
			chunks := make([][]byte, 0, len(raw))
			for i := range raw {
				chunks = append(chunks, raw[i:i+1])
			}

			frames, err := feedAll(a, chunks...)
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(Equal(whole))
		})

		It("yields the same frames for random chunkings", func() {
			raw := []byte(sampleStream)
			rng := rand.New(rand.NewPCG(7, 42))

			for range 50 {
				var chunks [][]byte
				for rest := raw; len(rest) > 0; {
					n := 1 + rng.IntN(len(rest))
					chunks = append(chunks, rest[:n])
					rest = rest[n:]
				}

				frames, err := feedAll(chatstream.NewAssembler(), chunks...)
				Expect(err).NotTo(HaveOccurred())
				Expect(frames).To(Equal(whole))
			}
		})

		It("reassembles multi-byte characters split between chunks", func() {
			payload, err := json.Marshal(map[string]string{"content": "Xin chào ✓"})
			Expect(err).NotTo(HaveOccurred())
			raw := append(append([]byte("data: "), payload...), '\n')

			cut := bytes.IndexRune(raw, '✓') + 1
			frames, err := feedAll(a, raw[:cut], raw[cut:])
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"Xin chào ✓"}))
		})
	})

	Describe("malformed frames", func() {
		It("tolerates invalid content JSON between valid frames", func() {
			input := "data: {\"content\":\"before\"}\n" +
				"data: {\"content\": oops\n" +
				"data: {\"content\":\"after\"}\n"
			frames, err := feedAll(a, []byte(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"before", "after"}))
			Expect(a.Halted()).To(BeFalse())
		})

		It("treats content JSON without the content field as a no-op", func() {
			frames, err := feedAll(a, []byte("data: {\"delta\":\"x\"}\ndata: {\"content\":\"y\"}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"y"}))
		})

		It("drops meta frames without a room id", func() {
			frames, err := feedAll(a, []byte("event: meta\ndata: {\"other\":1}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(BeEmpty())
		})

		DescribeTable("logs why a frame was dropped",
			func(line string, missing bool) {
				var buf bytes.Buffer
				a = chatstream.NewAssembler(chatstream.WithLogger(logger.New(
					logger.WithWriter(&buf),
					logger.WithJSON(true),
					logger.WithDebug(true),
				)))

				_, err := feedAll(a, []byte(line))
				Expect(err).NotTo(HaveOccurred())

				var rec map[string]any
				Expect(json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec)).To(Succeed())
				Expect(rec["msg"]).To(Equal("dropping malformed frame"))
				Expect(rec["missing_field"]).To(Equal(missing))
			},
			Entry("missing content field", "data: {\"delta\":\"x\"}\n", true),
			Entry("invalid JSON", "data: {\"content\": oops\n", false),
		)
	})

	Describe("error frames", func() {
		It("returns a well-formed error frame last and halts", func() {
			input := "data: {\"content\":\"partial\"}\n" +
				"event: error\n" +
				"data: {\"message\":\"quota exceeded\"}\n" +
				"data: {\"content\":\"ignored\"}\n"
			frames, err := a.Feed([]byte(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(frames)).To(Equal([]chatstream.FrameKind{chatstream.FrameContent, chatstream.FrameError}))
			Expect(frames[1].ErrorMessage).To(Equal("quota exceeded"))
			Expect(a.Halted()).To(BeTrue())

			more, err := a.Feed([]byte("data: {\"content\":\"later\"}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(more).To(BeEmpty())
			Expect(a.Content()).To(Equal("partial"))
		})

		It("fails fast on an error frame with invalid JSON", func() {
			input := "data: {\"content\":\"partial\"}\n" +
				"event: error\n" +
				"data: {broken\n" +
				"data: {\"content\":\"never\"}\n"
			frames, err := a.Feed([]byte(input))
			Expect(contents(frames)).To(Equal([]string{"partial"}))

			var perr *chatstream.ProtocolError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Payload).To(Equal("{broken"))
			Expect(a.Halted()).To(BeTrue())

			more, err := a.Feed([]byte("data: {\"content\":\"later\"}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(more).To(BeEmpty())

			more, err = a.Finalize()
			Expect(err).NotTo(HaveOccurred())
			Expect(more).To(BeEmpty())
		})

		It("fails fast on an error frame without a message", func() {
			_, err := a.Feed([]byte("event: error\ndata: {\"code\":500}\n"))

			var perr *chatstream.ProtocolError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(chatstream.IsMissingField(err)).To(BeTrue())
		})
	})

	Describe("Finalize", func() {
		It("emits a trailing line that never got a terminator", func() {
			frames, err := a.Feed([]byte(`data: {"content": "end"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(BeEmpty())
			Expect(a.Buffered()).To(BeNumerically(">", 0))

			frames, err = a.Finalize()
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"end"}))
			Expect(a.Buffered()).To(BeZero())
		})

		It("applies the fail-fast policy to a trailing error frame", func() {
			_, err := a.Feed([]byte("event: error\ndata: nope"))
			Expect(err).NotTo(HaveOccurred())

			_, err = a.Finalize()
			var perr *chatstream.ProtocolError
			Expect(errors.As(err, &perr)).To(BeTrue())
		})

		It("is a no-op on an empty buffer", func() {
			frames, err := a.Finalize()
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(BeEmpty())
		})
	})

	Describe("Cancel", func() {
		It("freezes the stream after cancellation", func() {
			frames, err := a.Feed([]byte("data: {\"content\":\"Partial\"}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(contents(frames)).To(Equal([]string{"Partial"}))

			a.Cancel()
			Expect(a.Cancelled()).To(BeTrue())

			frames, err = a.Feed([]byte("data: {\"content\":\" more\"}\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(BeEmpty())

			frames, err = a.Finalize()
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(BeEmpty())
			Expect(a.Content()).To(Equal("Partial"))
		})
	})
})

var _ = Describe("FailurePolicyFor", func() {
	DescribeTable("policies",
		func(kind chatstream.FrameKind, want chatstream.FailurePolicy) {
			Expect(chatstream.FailurePolicyFor(kind)).To(Equal(want))
		},
		Entry("content", chatstream.FrameContent, chatstream.PolicySwallow),
		Entry("meta", chatstream.FrameMeta, chatstream.PolicySwallow),
		Entry("unknown", chatstream.FrameUnknown, chatstream.PolicySwallow),
		Entry("error", chatstream.FrameError, chatstream.PolicyFailFast),
	)

	It("names policies", func() {
		Expect(chatstream.PolicyFailFast.String()).To(Equal("fail-fast"))
		Expect(chatstream.PolicySwallow.String()).To(Equal("swallow"))
	})
})
