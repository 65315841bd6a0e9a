package s3

import (
	"strings"
	"testing"

	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *S3Storage {
	t.Helper()
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds: credentials.NewStaticV4("key", "secret", ""),
	})
	require.NoError(t, err)
	return &S3Storage{client: client, bucket: "attachments-bucket", logger: logger.NewNop()}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("Pitch Deck.PDF")
	assert.True(t, strings.HasPrefix(key, "attachments/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotEqual(t, key, ObjectKey("Pitch Deck.PDF"))

	assert.NotContains(t, ObjectKey("noext"), ".")
}

func TestObjectURLRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	url := s.objectURL("attachments/abc.png")
	assert.Equal(t, "http://localhost:9000/attachments-bucket/attachments/abc.png", url)
	assert.Equal(t, "attachments/abc.png", s.keyFromRef(url))
	assert.Equal(t, "attachments/abc.png", s.keyFromRef("attachments/abc.png"))
	assert.Equal(t, "attachments/abc.png", s.keyFromRef("/attachments/abc.png"))
}
