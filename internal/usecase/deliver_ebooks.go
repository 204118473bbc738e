package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/mail"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/metrics"
)

// uploadsSegment marks ebook URLs served from this service's own uploads directory.
const uploadsSegment = "/uploads/"

type DeliverEbooksUseCase struct {
	EbookRepo  EbookRepository
	Transport  mail.Transport
	UploadsDir string
	From       string

	log *zap.SugaredLogger
}

func NewDeliverEbooksUseCase(
	ebookRepo EbookRepository,
	transport mail.Transport,
	uploadsDir, from string,
	log *zap.SugaredLogger,
) *DeliverEbooksUseCase {
	return &DeliverEbooksUseCase{
		EbookRepo:  ebookRepo,
		Transport:  transport,
		UploadsDir: uploadsDir,
		From:       from,
		log:        log,
	}
}

// Dispatch sends inline; it lets the use case act as the in-process EbookDispatcher.
func (uc *DeliverEbooksUseCase) Dispatch(ctx context.Context, prospect *entity.Prospect) error {
	return uc.Execute(ctx, prospect)
}

// Execute emails every visible ebook to the prospect. Send failures are returned
// once, without retry, and leave no trace on the prospect record.
func (uc *DeliverEbooksUseCase) Execute(ctx context.Context, prospect *entity.Prospect) error {
	if uc.Transport.DryRun() {
		metrics.RecordEbookDelivery("dry_run")
		uc.log.Infow("[MOCK EMAIL] here are your ebooks",
			"to", prospect.Email,
			"ebook_id", prospect.EbookID,
		)
		return nil
	}

	ebooks, err := uc.EbookRepo.FindVisible(ctx)
	if err != nil {
		return fmt.Errorf("load visible ebooks: %w", err)
	}

	msg, err := uc.compose(prospect, ebooks)
	if err != nil {
		return err
	}

	if err := uc.Transport.Send(ctx, msg); err != nil {
		return err
	}

	metrics.RecordEbookDelivery("sent")
	uc.log.Infow("✅ ebooks sent", "to", prospect.Email, "ebooks", len(msg.Attachments))
	return nil
}

func (uc *DeliverEbooksUseCase) compose(prospect *entity.Prospect, ebooks []*entity.Ebook) (*mail.Message, error) {
	titles := make([]string, 0, len(ebooks))
	attachments := make([]mail.Attachment, 0, len(ebooks))

	for _, ebook := range ebooks {
		titles = append(titles, ebook.Title)
		if ebook.PDFURL == "" {
			continue
		}
		attachments = append(attachments, uc.attachmentFor(ebook))
	}

	text, html, err := mail.RenderEbookEmail(mail.EbookEmailData{
		FirstName: prospect.FirstName,
		Titles:    titles,
	})
	if err != nil {
		return nil, err
	}

	return &mail.Message{
		From:        uc.From,
		To:          prospect.Email,
		Subject:     mail.EbookSubject,
		Text:        text,
		HTML:        html,
		Attachments: attachments,
	}, nil
}

// attachmentFor resolves ebooks hosted in our own uploads directory to a local file
// and leaves every other URL to be fetched by the transport.
func (uc *DeliverEbooksUseCase) attachmentFor(ebook *entity.Ebook) mail.Attachment {
	a := mail.Attachment{Filename: ebook.Title + ".pdf"}

	if idx := strings.LastIndex(ebook.PDFURL, uploadsSegment); idx >= 0 {
		name := filepath.Base(ebook.PDFURL[idx+len(uploadsSegment):])
		if name != "." && name != ".." && name != "/" {
			a.Path = filepath.Join(uc.UploadsDir, name)
			return a
		}
	}

	a.URL = ebook.PDFURL
	return a
}
