package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"Yurift-App/internal/pkg/logger"
)

const logModule = "firestore"

type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient はFirestoreクライアントを作成する
// Cloud Run上ではデフォルト認証、ローカルでは認証ファイル（GOOGLE_APPLICATION_CREDENTIALS）を使う
func NewFirestoreClient(ctx context.Context, projectID string, log logger.ILogger) (*FirestoreClient, error) {
	var client *firestore.Client
	var err error

	isCloudRun := os.Getenv("K_SERVICE") != ""

	credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	_, statErr := os.Stat(credentialsFile)

	switch {
	case isCloudRun:
		log.Info(logModule, "☁️ Cloud Run環境: デフォルト認証を使用", nil)
		client, err = firestore.NewClient(ctx, projectID)
	case credentialsFile != "" && statErr == nil:
		log.Info(logModule, "📄 認証ファイルを使用", map[string]interface{}{"file": credentialsFile})
		client, err = firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	default:
		log.Warn(logModule, "⚠️ 認証ファイルが見つからないためデフォルト認証を使用", map[string]interface{}{"file": credentialsFile})
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("Firestoreクライアントの初期化に失敗: %w", err)
	}

	log.Info(logModule, "✅ Firestore client initialized", map[string]interface{}{"project_id": projectID})
	return &FirestoreClient{client: client}, nil
}

func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}
