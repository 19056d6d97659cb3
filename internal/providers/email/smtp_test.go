package email

import (
	"context"
	"strings"
	"testing"

	notificationdomain "github.com/smallbiznis/mymart/internal/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleMessage() *notificationdomain.Message {
	return &notificationdomain.Message{
		ID:       "01HXTESTMESSAGE",
		To:       []string{"buyer@example.com"},
		Subject:  "MyMart Order Confirmation - Order #1042",
		HTMLBody: `<p>Thanks</p><img src="cid:mug-png@mymart">`,
		Inline: []notificationdomain.InlineAsset{
			{ContentID: "mug-png@mymart", FileName: "mug.png", ContentType: "image/png", Data: []byte("png-bytes")},
		},
		Attachment: notificationdomain.Attachment{
			FileName:    notificationdomain.InvoiceFileName,
			ContentType: notificationdomain.InvoiceContentType,
			Data:        []byte("%PDF-1.3"),
		},
	}
}

func TestBuildProducesRelatedAndAttachmentParts(t *testing.T) {
	e, err := Build("MyMart <shop@example.com>", sampleMessage())
	require.NoError(t, err)

	raw, err := e.Bytes()
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, "multipart/mixed")
	assert.Contains(t, body, "multipart/related")
	assert.Contains(t, body, "Content-Id: <mug-png@mymart>")
	assert.Contains(t, body, "inline;")
	assert.Contains(t, body, `filename="Invoice.pdf"`)
	assert.Contains(t, body, "application/pdf")
	assert.Contains(t, body, "Message-Id: <01HXTESTMESSAGE@mymart>")
	assert.True(t, strings.Contains(body, "Subject: MyMart Order Confirmation - Order #1042"))
}

func TestBuildRequiresRecipient(t *testing.T) {
	msg := sampleMessage()
	msg.To = nil
	_, err := Build("shop@example.com", msg)
	assert.ErrorIs(t, err, notificationdomain.ErrMissingRecipient)
}

func TestLogTransport(t *testing.T) {
	tr := NewLogTransport(zap.NewNop())
	require.NoError(t, tr.Send(context.Background(), sampleMessage()))
	assert.ErrorIs(t, tr.Send(context.Background(), &notificationdomain.Message{}), notificationdomain.ErrMissingRecipient)
}
