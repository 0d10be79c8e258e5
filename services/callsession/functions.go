package callsession

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clubvoice/models"
	"clubvoice/services/booking"
	"clubvoice/services/scheduling"
	"clubvoice/utils"
)

const slotLayout = "2006-01-02 15:04"

// dispatchFunction routes a function.called event to its handler. The
// returned map is the function's result payload; business failures
// (conflicts, bad arguments) are encoded in the map so the assistant
// can relay them, only internal failures surface as errors.
func (s *DefaultService) dispatchFunction(ctx context.Context, conv *models.Conversation, club *models.Club, p models.FunctionCallPayload) (map[string]any, error) {
	switch p.Name {
	case models.FnCreateBooking:
		return s.fnCreateBooking(ctx, conv, club, p.Arguments)
	case models.FnCheckAvailability:
		return s.fnCheckAvailability(ctx, club, p.Arguments)
	case models.FnCaptureLead:
		return s.fnCaptureLead(ctx, conv, club, p.Arguments)
	case models.FnEscalateToManager:
		return s.fnEscalateToManager(ctx, conv, club, p.Arguments)
	case models.FnMembershipInfo:
		return fnMembershipInfo(club), nil
	case models.FnBookingLink:
		return fnBookingLink(club), nil
	default:
		utils.GetLogger().Warn("unknown assistant function",
			zap.String("callID", conv.CallID), zap.String("function", p.Name))
		return map[string]any{"success": false, "error": fmt.Sprintf("unknown function %q", p.Name)}, nil
	}
}

func (s *DefaultService) fnCreateBooking(ctx context.Context, conv *models.Conversation, club *models.Club, args map[string]any) (map[string]any, error) {
	resource := argString(args, "resource")
	if resource == "" {
		return map[string]any{"success": false, "error": "missing argument: resource"}, nil
	}
	start, err := parseSlotTime(club, argString(args, "start_time"))
	if err != nil {
		return map[string]any{"success": false, "error": "invalid start_time: " + err.Error()}, nil
	}
	end, err := parseSlotTime(club, argString(args, "end_time"))
	if err != nil {
		return map[string]any{"success": false, "error": "invalid end_time: " + err.Error()}, nil
	}

	phone := argString(args, "phone")
	if phone == "" {
		phone = conv.Phone
	}

	b, err := s.Bookings.Create(ctx, booking.CreateRequest{
		ClubID:         club.ID,
		Resource:       resource,
		CustomerID:     conv.CustomerID,
		ConversationID: conv.ID,
		Start:          start,
		End:            end,
		Source:         models.SourcePhoneAI,
		ContactName:    argString(args, "customer_name"),
		ContactPhone:   phone,
		ContactEmail:   argString(args, "email"),
		Notes:          argString(args, "notes"),
	})
	if ce, ok := scheduling.IsConflict(err); ok {
		avail, aerr := s.Bookings.CheckAvailability(ctx, club.ID, resource, start, end)
		if aerr != nil {
			return nil, aerr
		}
		return map[string]any{
			"success":      false,
			"error":        ce.Error(),
			"alternatives": slotMaps(club, avail.Alternatives),
		}, nil
	}
	if ie, ok := scheduling.IsInvalidSlot(err); ok {
		return map[string]any{"success": false, "error": ie.Error()}, nil
	}
	if err != nil {
		return nil, err
	}

	loc := club.Location()
	return map[string]any{
		"success":           true,
		"booking_id":        b.ID,
		"confirmation_code": b.ConfirmationCode,
		"resource":          b.Resource,
		"start":             b.Start.In(loc).Format(slotLayout),
		"end":               b.End.In(loc).Format(slotLayout),
	}, nil
}

func (s *DefaultService) fnCheckAvailability(ctx context.Context, club *models.Club, args map[string]any) (map[string]any, error) {
	resource := argString(args, "resource")
	if resource == "" {
		return map[string]any{"available": false, "reason": "missing argument: resource"}, nil
	}
	start, err := parseSlotTime(club, argString(args, "start_time"))
	if err != nil {
		return map[string]any{"available": false, "reason": "invalid start_time: " + err.Error()}, nil
	}
	end, err := parseSlotTime(club, argString(args, "end_time"))
	if err != nil {
		return map[string]any{"available": false, "reason": "invalid end_time: " + err.Error()}, nil
	}

	avail, err := s.Bookings.CheckAvailability(ctx, club.ID, resource, start, end)
	if err != nil {
		return nil, err
	}
	result := map[string]any{"available": avail.Available}
	if avail.Reason != "" {
		result["reason"] = avail.Reason
	}
	if len(avail.Alternatives) > 0 {
		result["alternatives"] = slotMaps(club, avail.Alternatives)
	}
	return result, nil
}

// fnCaptureLead fills in the placeholder customer created at call start
// and moves them one step down the funnel. The manager gets a lead
// alert SMS; a failure to queue it does not fail the capture.
func (s *DefaultService) fnCaptureLead(ctx context.Context, conv *models.Conversation, club *models.Club, args map[string]any) (map[string]any, error) {
	now := s.now()
	var cust *models.Customer
	var err error
	if conv.CustomerID != "" {
		cust, err = s.Customers.GetByID(ctx, conv.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load customer %s: %w", conv.CustomerID, err)
		}
	} else {
		phone := argString(args, "phone")
		if phone == "" {
			phone = conv.Phone
		}
		if phone == "" {
			return map[string]any{"success": false, "error": "no phone number to attach the lead to"}, nil
		}
		cust, err = s.ensureCustomer(ctx, club, phone, now)
		if err != nil {
			return nil, err
		}
		conv.CustomerID = cust.ID
	}

	if name := argString(args, "name"); name != "" {
		cust.Name = name
	}
	if email := argString(args, "email"); email != "" {
		cust.Email = email
	}
	if interest := argString(args, "interested_in"); interest != "" {
		cust.InterestedIn = interest
	}
	if notes := argString(args, "notes"); notes != "" {
		if cust.Notes != "" {
			cust.Notes += "\n"
		}
		cust.Notes += notes
	}
	cust.AdvanceStatus(models.CustomerProspect)
	cust.LastContactAt = now
	cust.UpdatedAt = now
	if err := s.Customers.Update(ctx, cust); err != nil {
		return nil, fmt.Errorf("failed to update customer %s: %w", cust.ID, err)
	}

	if err := s.Notifier.QueueLeadAlert(ctx, club, cust); err != nil {
		utils.GetLogger().Error("failed to queue lead alert",
			zap.String("customerID", cust.ID), zap.Error(err))
	}
	return map[string]any{"success": true, "customer_id": cust.ID}, nil
}

func (s *DefaultService) fnEscalateToManager(ctx context.Context, conv *models.Conversation, club *models.Club, args map[string]any) (map[string]any, error) {
	reason := argString(args, "reason")
	summary := argString(args, "summary")
	if err := s.Notifier.QueueEscalation(ctx, club, conv, reason, summary); err != nil {
		utils.GetLogger().Error("failed to queue escalation",
			zap.String("callID", conv.CallID), zap.Error(err))
		return map[string]any{"success": false, "error": "could not reach the manager right now"}, nil
	}
	conv.Escalated = true
	return map[string]any{
		"success": true,
		"message": "The manager has been notified and will follow up shortly.",
	}, nil
}

func fnMembershipInfo(club *models.Club) map[string]any {
	if len(club.MembershipTiers) == 0 {
		return map[string]any{"success": false, "error": "no membership information on file"}
	}
	tiers := make([]map[string]any, 0, len(club.MembershipTiers))
	for _, t := range club.MembershipTiers {
		tiers = append(tiers, map[string]any{
			"name":     t.Name,
			"price":    t.Price,
			"currency": t.Currency,
			"period":   t.Period,
		})
	}
	return map[string]any{"success": true, "tiers": tiers}
}

func fnBookingLink(club *models.Club) map[string]any {
	if club.MarketplaceBookingURL == "" {
		return map[string]any{"success": false, "error": "online booking is not set up for this club"}
	}
	return map[string]any{"success": true, "url": club.MarketplaceBookingURL}
}

func slotMaps(club *models.Club, slots []models.SlotSuggestion) []map[string]any {
	loc := club.Location()
	out := make([]map[string]any, 0, len(slots))
	for _, sl := range slots {
		out = append(out, map[string]any{
			"resource": sl.Resource,
			"start":    sl.Start.In(loc).Format(slotLayout),
			"end":      sl.End.In(loc).Format(slotLayout),
		})
	}
	return out
}

func argString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	v, ok := args[key].(string)
	if !ok {
		return ""
	}
	return v
}

// parseSlotTime accepts RFC 3339 or a bare local timestamp, which is
// interpreted in the club's timezone.
func parseSlotTime(club *models.Club, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(slotLayout, raw, club.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 or %q", slotLayout)
	}
	return t, nil
}
