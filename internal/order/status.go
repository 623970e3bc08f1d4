package order

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCanceled   Status = "Canceled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

// statusTransitions is the closed transition table. Delivered and Canceled
// are terminal. Guarded service methods enforce the actor rules on top.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCanceled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered, StatusCanceled},
	StatusDelivered:  {},
	StatusCanceled:   {},
}

func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s Status) Terminal() bool {
	next, ok := statusTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether to is reachable from s in one step.
func (s Status) CanTransition(to Status) bool {
	for _, next := range statusTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (p PaymentStatus) Valid() bool {
	return p == PaymentUnpaid || p == PaymentPaid
}
