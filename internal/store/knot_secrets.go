package store

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Secrets path
// projects/{project}/secrets/knot-client-secret/versions/{version}

type knotSecretsStore struct {
	client    *secretmanager.Client
	projectID string
	secretID  string
}

func NewKnotSecretsStore(client *secretmanager.Client, projectID, secretID string) *knotSecretsStore {
	if secretID == "" {
		secretID = "knot-client-secret"
	}
	return &knotSecretsStore{
		client:    client,
		projectID: projectID,
		secretID:  secretID,
	}
}

func (s *knotSecretsStore) secretName() string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretID)
}

func (s *knotSecretsStore) ensureSecret(ctx context.Context) error {
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: s.secretName()})
	if status.Code(err) == codes.NotFound {
		_, err = s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: s.secretID,
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{Automatic: &secretmanagerpb.Replication_Automatic{}},
				},
			},
		})
	}
	return err
}

func (s *knotSecretsStore) StoreClientSecret(ctx context.Context, secret string) error {
	if err := s.ensureSecret(ctx); err != nil {
		return err
	}
	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: s.secretName(),
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(secret),
		},
	})
	return err
}

func (s *knotSecretsStore) GetClientSecret(ctx context.Context) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", s.secretName()),
	})
	if err != nil {
		return "", err
	}
	return string(res.Payload.Data), nil
}
