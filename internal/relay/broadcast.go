package relay

// Broadcast delivers one encoded line to every registered session, the sender
// included. Delivery is best effort per recipient: a session whose outbound
// queue is full or already closing is logged and skipped, never evicted.
// Removal belongs exclusively to that session's own read loop, so cleanup is
// never raced from two directions.
func (r *Room) Broadcast(line string) {
	for _, s := range r.snapshot() {
		if !s.deliver(line) {
			r.logger.Printf("relay: dropped line for %q (queue full or session closing)", s.Username)
		}
	}
}

// BroadcastFrom rewrites a raw inbound line as the sending session's tagged
// message and fans it out.
func (r *Room) BroadcastFrom(sender *Session, raw string) {
	r.Broadcast(EncodeFromSender(raw, sender.Username, sender.Color))
}

// BroadcastUserList publishes the current roster.
func (r *Room) BroadcastUserList() {
	r.Broadcast(EncodeUserList(r.Usernames()))
}
