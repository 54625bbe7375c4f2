package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/angelmondragon/mia-backend/internal/tracking"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/sendgrid"
)

// EmailSender delivers one transactional email.
type EmailSender interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

var priceDropHTML = template.Must(template.New("price_drop").Parse(`<p>Boa notícia! O preço de <strong>{{.Product}}</strong> caiu.</p>
<p>De <s>{{.Old}}</s> por <strong>{{.New}}</strong>.</p>
{{if .Link}}<p><a href="{{.Link}}">Ver oferta</a></p>{{end}}
<p>Equipe MIA</p>`))

// PriceDropMailer emails the wish owner when a tracked price drops.
type PriceDropMailer struct {
	sender EmailSender
}

// NewPriceDropMailer builds a mailer on top of an email sender.
func NewPriceDropMailer(sender EmailSender) (*PriceDropMailer, error) {
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email sender required")
	}
	return &PriceDropMailer{sender: sender}, nil
}

// NotifyPriceDrop implements tracking.Notifier.
func (m *PriceDropMailer) NotifyPriceDrop(ctx context.Context, email string, drop tracking.PriceDrop) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	msg, err := buildPriceDropMessage(email, drop)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, msg)
}

func buildPriceDropMessage(email string, drop tracking.PriceDrop) (sendgrid.Message, error) {
	product := strings.TrimSpace(drop.ProductName)
	if product == "" {
		product = "seu produto"
	}
	oldPrice := formatBRL(drop.OldPrice)
	newPrice := formatBRL(drop.NewPrice)

	plain := fmt.Sprintf("Boa notícia! O preço de %s caiu de %s para %s.", product, oldPrice, newPrice)
	if drop.Link != "" {
		plain += "\n\nVer oferta: " + drop.Link
	}

	var html bytes.Buffer
	if err := priceDropHTML.Execute(&html, map[string]string{
		"Product": product,
		"Old":     oldPrice,
		"New":     newPrice,
		"Link":    drop.Link,
	}); err != nil {
		return sendgrid.Message{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render price drop email")
	}

	return sendgrid.Message{
		ToEmail:   email,
		Subject:   fmt.Sprintf("Baixou! %s agora por %s", product, newPrice),
		PlainText: plain,
		HTML:      html.String(),
	}, nil
}

var _ tracking.Notifier = (*PriceDropMailer)(nil)
