package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	out *rekognition.DetectTextOutput
	err error
}

func (f fakeDetector) DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	return f.out, f.err
}

func detection(text string, confidence float32, typ types.TextTypes) types.TextDetection {
	return types.TextDetection{DetectedText: aws.String(text), Confidence: aws.Float32(confidence), Type: typ}
}

func TestLPRService_PicksMostConfidentPlate(t *testing.T) {
	svc := NewLPRService(fakeDetector{out: &rekognition.DetectTextOutput{TextDetections: []types.TextDetection{
		detection("PARKIR", 99.1, types.TextTypesLine),
		detection("B 1234 XY", 91.5, types.TextTypesLine),
		detection("D 77 AB", 97.0, types.TextTypesLine),
		detection("03.26", 98.0, types.TextTypesWord),
	}}})

	plate, confidence, err := svc.ProcessImageForLPR(context.Background(), []byte{0xff})
	require.NoError(t, err)
	assert.Equal(t, "D77AB", plate)
	assert.InDelta(t, 97.0, confidence, 0.001)
}

func TestLPRService_Failures(t *testing.T) {
	ctx := context.Background()

	_, _, err := NewLPRService(fakeDetector{out: &rekognition.DetectTextOutput{TextDetections: []types.TextDetection{
		detection("EXIT", 99, types.TextTypesLine),
	}}}).ProcessImageForLPR(ctx, []byte{1})
	assert.ErrorIs(t, err, ErrNoPlateDetected)

	boom := errors.New("throttled")
	_, _, err = NewLPRService(fakeDetector{err: boom}).ProcessImageForLPR(ctx, []byte{1})
	assert.ErrorIs(t, err, boom)

	_, _, err = NewLPRService(nil).ProcessImageForLPR(ctx, []byte{1})
	assert.ErrorIs(t, err, ErrLPRDisabled)
}
