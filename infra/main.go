package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/amankv/dime-backend/infra/cloudrun"
	"github.com/amankv/dime-backend/infra/docker"
	"github.com/amankv/dime-backend/infra/firestore"
	"github.com/amankv/dime-backend/infra/kms"
	"github.com/amankv/dime-backend/infra/provider"
	"github.com/amankv/dime-backend/infra/secret"
	"github.com/amankv/dime-backend/infra/vertex"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable firestore and create a database + indexes
		if err := firestore.SetupFirestore(ctx, prov); err != nil {
			return err
		}

		// enable vertex for classification and the chat assistant
		if err := vertex.SetupVertex(ctx, prov); err != nil {
			return err
		}

		// enable KMS and create the card-data key
		if _, err := kms.SetupKMS(ctx, prov); err != nil {
			return err
		}
		cardKey, err := kms.CreateKey(ctx, prov, "dime", "card-data")
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx)
		if err != nil {
			return err
		}

		// runtime identity, then secret manager so the app can read
		// and bootstrap its knot secret
		apiSA, err := cloudrun.CreateServiceAccount(ctx, prov)
		if err != nil {
			return err
		}
		if _, err := secret.SetupSecretManager(ctx, prov, apiSA); err != nil {
			return err
		}

		return cloudrun.SetupCloudRun(ctx, prov, apiSA, cardKey, repo)
	})
}
