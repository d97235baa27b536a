package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

var ErrNoPlateDetected = errors.New("no plate number recognised in image")
var ErrLPRDisabled = errors.New("plate recognition is not configured")

// TextDetector is the part of the Rekognition client used for plate reading.
type TextDetector interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

type LPRService struct {
	detector TextDetector
}

func NewLPRService(detector TextDetector) *LPRService {
	return &LPRService{detector: detector}
}

// ProcessImageForLPR runs text detection on an image and returns the
// normalized plate with the highest confidence.
func (s *LPRService) ProcessImageForLPR(ctx context.Context, imageBytes []byte) (string, float32, error) {
	if s == nil || s.detector == nil {
		return "", 0, ErrLPRDisabled
	}

	result, err := s.detector.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: imageBytes},
	})
	if err != nil {
		log.Printf("LPRService: DetectText failed: %v", err)
		return "", 0, fmt.Errorf("rekognition: %w", err)
	}

	log.Printf("LPRService: Rekognition returned %d text blocks", len(result.TextDetections))
	var detectedTexts []string
	var bestPlate string
	var bestConfidence float32

	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine && detection.Type != types.TextTypesWord {
			continue
		}
		if detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		txt := domain.NormalizePlate(*detection.DetectedText)
		detectedTexts = append(detectedTexts, fmt.Sprintf("%s (%.2f)", txt, *detection.Confidence))

		if domain.ValidPlate(txt) && *detection.Confidence > bestConfidence {
			bestConfidence = *detection.Confidence
			bestPlate = txt
		}
	}

	if bestPlate == "" {
		log.Printf("LPRService: no candidate matched, detected: %s", strings.Join(detectedTexts, ", "))
		return "", 0, ErrNoPlateDetected
	}
	log.Printf("LPRService: selected plate %s (confidence %.2f)", bestPlate, bestConfidence)
	return bestPlate, bestConfidence, nil
}
