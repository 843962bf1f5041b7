package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/chatai/internal/upstream"
)

const (
	bedrockProvider     = "bedrock"
	defaultBedrockModel = "stability.stable-image-ultra-v1:1"
)

// Bedrock invokes a Stability model hosted on Amazon Bedrock.
type Bedrock struct {
	client *bedrockruntime.Client
	model  string
	format string
}

type bedrockRequest struct {
	Prompt       string `json:"prompt"`
	OutputFormat string `json:"output_format"`
}

type bedrockResponse struct {
	Images        []string  `json:"images"`
	FinishReasons []*string `json:"finish_reasons"`
}

// NewBedrockFromEnv loads AWS credentials from the default chain.
// Retries are disabled: a failed call is reported at once.
func NewBedrockFromEnv(ctx context.Context, region, model, format string) (*Bedrock, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewBedrock(bedrockruntime.NewFromConfig(cfg), model, format), nil
}

// NewBedrock wraps an existing runtime client.
func NewBedrock(client *bedrockruntime.Client, model, format string) *Bedrock {
	if model == "" {
		model = defaultBedrockModel
	}
	return &Bedrock{client: client, model: model, format: format}
}

func (b *Bedrock) Name() string { return bedrockProvider + "/" + b.model }

func (b *Bedrock) Generate(ctx context.Context, prompt string) (Image, error) {
	body, err := json.Marshal(bedrockRequest{Prompt: prompt, OutputFormat: b.format})
	if err != nil {
		return Image{}, fmt.Errorf("encode request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.model),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		var coded interface{ HTTPStatusCode() int }
		if errors.As(err, &coded) && coded.HTTPStatusCode() != 0 {
			return Image{}, &upstream.Error{Provider: bedrockProvider, StatusCode: coded.HTTPStatusCode(), Err: err}
		}
		return Image{}, upstream.Wrap(bedrockProvider, err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return Image{}, upstream.Malformed(bedrockProvider, err)
	}
	if len(resp.Images) == 0 {
		return Image{}, upstream.Malformed(bedrockProvider, fmt.Errorf("no images in response"))
	}
	if len(resp.FinishReasons) > 0 && resp.FinishReasons[0] != nil {
		return Image{}, upstream.Wrap(bedrockProvider, fmt.Errorf("generation stopped: %s", *resp.FinishReasons[0]))
	}

	data, err := base64.StdEncoding.DecodeString(resp.Images[0])
	if err != nil {
		return Image{}, upstream.Malformed(bedrockProvider, err)
	}
	return Image{Data: data, MIMEType: "image/" + b.format}, nil
}
