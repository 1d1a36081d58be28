package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/slack-go/slack"

	"github.com/Broodje2/kudos-bot/internal/domain"
	"github.com/Broodje2/kudos-bot/internal/ledger"
	"github.com/Broodje2/kudos-bot/internal/logger"
)

const KudosModalID = "give_kudos_modal"

// Block and action ids of the give-kudos modal.
const (
	blockRecipient  = "doer_of_good_deeds_block"
	actionRecipient = "doer_of_good_deeds"
	blockChannel    = "kudo_channel_block"
	actionChannel   = "kudo_channel"
	blockAmount     = "kudo_amount_block"
	actionAmount    = "kudo_points"
	blockReason     = "kudo_message_block"
	actionReason    = "kudo_message"
)

// KudosState is where a give-kudos submission ended up.
type KudosState string

const (
	KudosOpened    KudosState = "opened"
	KudosSubmitted KudosState = "submitted"
	KudosValidated KudosState = "validated"
	KudosRecorded  KudosState = "recorded"
	KudosAnnounced KudosState = "announced"
	KudosError     KudosState = "error"
)

// KudosForm is the raw modal input.
type KudosForm struct {
	Recipient string
	Channel   string
	Amount    string
	Reason    string
}

func FormFromValues(values map[string]string) KudosForm {
	return KudosForm{
		Recipient: strings.TrimSpace(values[actionRecipient]),
		Channel:   strings.TrimSpace(values[actionChannel]),
		Amount:    strings.TrimSpace(values[actionAmount]),
		Reason:    strings.TrimSpace(values[actionReason]),
	}
}

// Validate checks every field and parses the amount.
func (f KudosForm) Validate() (int64, error) {
	var missing []string
	for _, fld := range []struct{ name, v string }{
		{"recipient", f.Recipient},
		{"channel", f.Channel},
		{"amount", f.Amount},
		{"reason", f.Reason},
	} {
		if fld.v == "" {
			missing = append(missing, fld.name)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return ParseAmount(f.Amount)
}

type transactionRecorder interface {
	CreateTransaction(ctx context.Context, tx domain.Transaction) error
}

// KudosFlow opens the give-kudos modal and turns its submission into one
// ledger transaction plus one message.
type KudosFlow struct {
	ledger  transactionRecorder
	journal Journal
	log     *logger.Logger
	now     func() time.Time
}

func NewKudosFlow(l transactionRecorder, j Journal, log *logger.Logger) *KudosFlow {
	if j == nil {
		j = NopJournal
	}
	if log == nil {
		log = logger.Nop()
	}
	return &KudosFlow{ledger: l, journal: j, log: log.With("component", "kudos"), now: time.Now}
}

func (k *KudosFlow) Open(ctx context.Context, c *Context) error {
	if err := c.OpenView(ctx, KudosModal(c.ChannelID)); err != nil {
		c.Log().Warn("open kudos modal", "error", err)
		return c.Whisper(ctx, c.ChannelID, msgDialogFailed)
	}
	return nil
}

// Submit drives a modal submission to its terminal state.
func (k *KudosFlow) Submit(ctx context.Context, c *Context) (KudosState, error) {
	form := FormFromValues(c.Values)
	attempt := domain.KudosAttempt{
		ID:            uuid.NewString(),
		InteractionID: c.ID,
		OriginID:      c.UserID,
		DestinationID: form.Recipient,
		ChannelID:     form.Channel,
		CreatedAt:     k.now(),
	}
	state, err := k.submit(ctx, c, form, &attempt)
	attempt.State = string(state)
	if jerr := k.journal.RecordKudos(ctx, attempt); jerr != nil {
		c.Log().Warn("journal kudos attempt", "error", jerr)
	}
	return state, err
}

func (k *KudosFlow) submit(ctx context.Context, c *Context, form KudosForm, a *domain.KudosAttempt) (KudosState, error) {
	amount, err := form.Validate()
	if err != nil {
		a.Error = err.Error()
		c.Log().Info("kudos rejected", "error", err)
		return KudosError, c.Whisper(ctx, form.Channel, fmt.Sprintf(msgKudosInvalid, validationHint(err)))
	}
	a.Amount = amount

	tx := domain.Transaction{
		OriginID:        c.UserID,
		OriginKind:      domain.KudosGiveaway,
		DestinationID:   form.Recipient,
		DestinationKind: domain.KudosReceived,
		Amount:          amount,
		Reason:          form.Reason,
	}
	if err := k.ledger.CreateTransaction(ctx, tx); err != nil {
		a.Error = err.Error()
		c.Log().Error("kudos transaction failed", "from", tx.OriginID, "to", tx.DestinationID, "amount", amount, "error", err)
		return KudosError, c.PostTo(ctx, form.Channel, ledgerFailureText(err))
	}
	c.Log().Info("kudos recorded", "from", tx.OriginID, "to", tx.DestinationID, "amount", amount)

	text := fmt.Sprintf(msgKudosAnnounce, tx.DestinationID, amount, tx.OriginID, tx.Reason)
	if err := c.PostTo(ctx, form.Channel, text); err != nil {
		a.Error = err.Error()
		return KudosRecorded, fmt.Errorf("announce kudos in %s: %w", form.Channel, err)
	}
	return KudosAnnounced, nil
}

func ledgerFailureText(err error) string {
	if !ledger.IsStatus(err) {
		return msgKudosFailed
	}
	reason := ledger.Reason(err)
	if reason == "" {
		reason = msgKudosUnknown
	}
	return fmt.Sprintf(msgKudosRejected, reason)
}

func validationHint(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "vul alle velden in."
	case errors.Is(err, ErrInvalidAmount):
		return "het aantal moet een positief geheel getal zijn."
	default:
		return err.Error()
	}
}

// KudosModal is the give-kudos form. The destination defaults to channelID.
func KudosModal(channelID string) slack.ModalViewRequest {
	plain := func(s string) *slack.TextBlockObject {
		return slack.NewTextBlockObject(slack.PlainTextType, s, false, false)
	}

	recipient := &slack.SelectBlockElement{
		Type:     slack.OptTypeUser,
		ActionID: actionRecipient,
	}
	channel := &slack.SelectBlockElement{
		Type:                slack.OptTypeConversations,
		ActionID:            actionChannel,
		InitialConversation: channelID,
	}
	amount := slack.NewPlainTextInputBlockElement(nil, actionAmount)
	amount.InitialValue = "1"
	reason := slack.NewPlainTextInputBlockElement(nil, actionReason)
	reason.Multiline = true

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: KudosModalID,
		Title:      plain("Give someone kudos"),
		Submit:     plain("Share"),
		Close:      plain("Cancel"),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			inputBlock(blockRecipient, plain("Whose deeds are deemed worthy of a kudo?"), recipient),
			inputBlock(blockChannel, plain("Where should this message be shared?"), channel),
			inputBlock(blockAmount, plain("How many kudos do you want to give?"), amount),
			inputBlock(blockReason, plain("What would you like to say?"), reason),
		}},
	}
}

func inputBlock(id string, label *slack.TextBlockObject, el slack.BlockElement) *slack.InputBlock {
	return &slack.InputBlock{
		Type:    slack.MBTInput,
		BlockID: id,
		Label:   label,
		Element: el,
	}
}
