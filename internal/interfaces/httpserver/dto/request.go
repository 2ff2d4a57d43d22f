package dto

import "travelbro-server/internal/domain/chat"

// LatLng is a client-reported device location.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ChatRequest is the JSON body of POST /v1/chat.
type ChatRequest struct {
	TripID              string  `json:"tripId"`
	SessionToken        string  `json:"sessionToken"`
	Message             string  `json:"message"`
	ImageBase64         string  `json:"imageBase64"`
	ImageURL            string  `json:"imageUrl"`
	AudioBase64         string  `json:"audioBase64"`
	UserLocation        *LatLng `json:"userLocation"`
	DeviceType          string  `json:"deviceType"`
	PreferVoiceResponse bool    `json:"preferVoiceResponse"`
}

// ToDomain maps the wire request onto the domain request.
func (r ChatRequest) ToDomain() chat.Request {
	req := chat.Request{
		TripID:       r.TripID,
		SessionToken: r.SessionToken,
		Message:      r.Message,
		ImageBase64:  r.ImageBase64,
		ImageURL:     r.ImageURL,
		AudioBase64:  r.AudioBase64,
		DeviceType:   r.DeviceType,
		PreferVoice:  r.PreferVoiceResponse,
	}
	if req.DeviceType == "" {
		req.DeviceType = "web"
	}
	if r.UserLocation != nil {
		req.UserLocation = &chat.LatLng{Lat: r.UserLocation.Lat, Lng: r.UserLocation.Lng}
	}
	return req
}
