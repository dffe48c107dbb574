package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/assistant"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
)

var _ = Describe("assistant client against the dev server", func() {
	var client *assistant.Client

	BeforeEach(func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		server := NewServer(Config{}, logger.Nop())
		go func() { _ = server.Serve(ln) }()
		DeferCleanup(func() { _ = server.Shutdown() })

		client, err = assistant.NewClient(assistant.Config{
			Endpoint:  fmt.Sprintf("http://%s%s", ln.Addr(), ChatPath),
			Token:     "dev",
			ChunkSize: 7,
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs a two turn conversation in one room", func() {
		conv := conversation.New("", nil)

		s, err := conv.Begin("first")
		Expect(err).NotTo(HaveOccurred())
		res, err := client.Submit(context.Background(), s, "first")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Content).To(Equal("You said: first"))
		room := conv.RoomID()
		Expect(room).NotTo(BeEmpty())

		s, err = conv.Begin("second")
		Expect(err).NotTo(HaveOccurred())
		res, err = client.Submit(context.Background(), s, "second")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.RoomID).To(Equal(room))

		Expect(conv.Transcript().Len()).To(Equal(4))
	})

	It("surfaces server error events", func() {
		conv := conversation.New("", nil)
		s, err := conv.Begin("/fail maintenance")
		Expect(err).NotTo(HaveOccurred())

		_, err = client.Submit(context.Background(), s, "/fail maintenance")
		var serr *conversation.ServerError
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(serr.Message).To(Equal("maintenance"))
	})
})
