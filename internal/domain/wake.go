package domain

// WakeLog records a delivered nudge so the target's reply can be routed back.
type WakeLog struct {
	ID           int64
	SenderID     int64 // chat id of the user who sent /wake
	ReceiverID   int64 // chat id the nudge was delivered to
	MessageID    int   // id of the nudge message in the receiver's chat
	CommandMsgID int   // id of the /wake message in the sender's chat
	ReplyUsed    bool
}
