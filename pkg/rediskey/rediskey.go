package rediskey

import "fmt"

const (
	OrderLockPrefix = "order:lock"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildOrderLockKey returns "order:lock:{orderID}"
func BuildOrderLockKey(orderID string) string {
	return NamespaceKey(OrderLockPrefix, orderID)
}
