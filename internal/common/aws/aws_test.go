package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "ai-advisor/internal/common/errors"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

type mockSES struct{ mock.Mock }

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ses.SendEmailOutput)
	return out, args.Error(1)
}

// ==========================
// SNS
// ==========================

func TestSNSClient_PublishEvent(t *testing.T) {
	api := &mockSNS{}
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var body map[string]interface{}
		if err := json.Unmarshal([]byte(awssdk.ToString(in.Message)), &body); err != nil {
			return false
		}
		return awssdk.ToString(in.TopicArn) == "arn:aws:sns:ap-southeast-1:1:advisor" &&
			body["conversation_id"] == "c1" &&
			awssdk.ToString(in.MessageAttributes["event_type"].StringValue) == "solution.generated"
	})).Return(&sns.PublishOutput{MessageId: awssdk.String("m-1")}, nil)

	client := &SNSClient{client: api, topicARN: "arn:aws:sns:ap-southeast-1:1:advisor"}
	err := client.PublishEvent(context.Background(), "solution.generated", map[string]string{"conversation_id": "c1"})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestSNSClient_PublishFailure(t *testing.T) {
	api := &mockSNS{}
	api.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	client := &SNSClient{client: api, topicARN: "arn"}
	err := client.PublishEvent(context.Background(), "solution.generated", struct{}{})

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.Equal(t, "solution.generated", stdErr.Metadata["eventType"])
}

// ==========================
// SES
// ==========================

func TestSESClient_SendEmail(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantHTML bool
	}{
		{"text only", "", false},
		{"with html", "<h1>方案</h1>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockSES{}
			api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
				return awssdk.ToString(in.Source) == "advisor@corp.cn" &&
					in.Destination.ToAddresses[0] == "cto@corp.cn" &&
					awssdk.ToString(in.Message.Subject.Data) == "方案导出" &&
					(in.Message.Body.Html != nil) == tt.wantHTML
			})).Return(&ses.SendEmailOutput{MessageId: awssdk.String("ses-1")}, nil)

			client := &SESClient{client: api, from: "advisor@corp.cn"}
			id, err := client.SendEmail(context.Background(), "cto@corp.cn", "方案导出", "# 方案", tt.html)
			require.NoError(t, err)
			assert.Equal(t, "ses-1", id)
			api.AssertExpectations(t)
		})
	}
}

func TestSESClient_SendFailure(t *testing.T) {
	api := &mockSES{}
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("MessageRejected"))

	_, err := (&SESClient{client: api, from: "a@b.c"}).SendEmail(context.Background(), "x@y.z", "s", "t", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotificationSendFailed))
}
