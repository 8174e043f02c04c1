package iiko

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// GetReplicationStatuses retrieves the replication status of every department
func (c *Client) GetReplicationStatuses(ctx context.Context) ([]ReplicationStatus, error) {
	body, err := c.Get(ctx, "replication/statuses", nil)
	if err != nil {
		return nil, err
	}

	var wrapper replicationStatuses
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Items, nil
}

// GetReplicationStatus retrieves the replication status of one department
func (c *Client) GetReplicationStatus(ctx context.Context, departmentID uuid.UUID) (*ReplicationStatus, error) {
	body, err := c.Get(ctx, "replication/byDepartmentId/"+departmentID.String()+"/status", nil)
	if err != nil {
		return nil, err
	}

	var status ReplicationStatus
	if err := decodeXML(body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetServerType reports whether the server is a chain or a restaurant server
func (c *Client) GetServerType(ctx context.Context) (ServerType, error) {
	body, err := c.Get(ctx, "replication/serverType", nil)
	if err != nil {
		return "", err
	}

	var value string
	if err := decodeXML(body, &value); err != nil {
		return "", err
	}

	switch st := ServerType(strings.TrimSpace(value)); st {
	case ServerTypeChain, ServerTypeReplicatedRMS, ServerTypeStandaloneRMS:
		return st, nil
	default:
		return "", &Error{Kind: KindAPI, Message: "unknown server type: " + string(st)}
	}
}
