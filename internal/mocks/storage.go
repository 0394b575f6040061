package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

// MockImageService is a mock implementation of the recipe picture store
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockImageService) UploadRecipeImage(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

// MockUploader mocks the S3 PutObject call
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}
