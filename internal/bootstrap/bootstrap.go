package bootstrap

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"

	knotclient "github.com/amankv/dime-backend/internal/client/knot"
	nessieclient "github.com/amankv/dime-backend/internal/client/nessie"
	vertexclient "github.com/amankv/dime-backend/internal/client/vertex"
	"github.com/amankv/dime-backend/internal/config"
	"github.com/amankv/dime-backend/internal/store"
	"github.com/amankv/dime-backend/pkg/logger"
)

type Bootstrap struct {
	Log           *slog.Logger
	Firestore     *firestore.Client
	KMS           *gcpkms.KeyManagementClient
	Secrets       *secretmanager.Client
	VertexAdapter *vertexclient.Adapter
	KnotAdapter   *knotclient.Adapter
	NessieAdapter *nessieclient.Adapter
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.KMS, err = gcpkms.NewKeyManagementClient(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.Secrets, err = secretmanager.NewClient(applicationCtx)
	if err != nil {
		return bs, err
	}
	bs.VertexAdapter, err = vertexclient.NewAdapter(applicationCtx, bs.Log,
		cfg.ProjectID, cfg.Region, cfg.VertexModel, cfg.EmbeddingModel)
	if err != nil {
		return bs, err
	}

	knotSecret, err := resolveKnotSecret(applicationCtx, bs.Secrets, cfg)
	if err != nil {
		return bs, err
	}
	bs.KnotAdapter = knotclient.NewAdapter(cfg.KnotBaseURL, cfg.KnotClientID, knotSecret)
	bs.NessieAdapter = nessieclient.NewAdapter(cfg.NessieBaseURL, cfg.NessieAPIKey)

	return bs, nil
}

// resolveKnotSecret prefers the env var and falls back to Secret
// Manager, so local runs need no GCP access while deployments keep the
// secret out of the environment.
func resolveKnotSecret(ctx context.Context, client *secretmanager.Client, cfg *config.Config) (string, error) {
	if cfg.KnotSecret != "" {
		return cfg.KnotSecret, nil
	}
	secrets := store.NewKnotSecretsStore(client, cfg.ProjectID, cfg.KnotSecretName)
	return secrets.GetClientSecret(ctx)
}

func (bs *Bootstrap) Close() {
	if bs.VertexAdapter != nil {
		bs.VertexAdapter.Close()
	}
	if bs.Secrets != nil {
		bs.Secrets.Close()
	}
	if bs.KMS != nil {
		bs.KMS.Close()
	}
	if bs.Firestore != nil {
		bs.Firestore.Close()
	}
}
