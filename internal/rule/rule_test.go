/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
)

func TestRuleTriggerValue(t *testing.T) {
	trig, err := Rule{Action: ActionTrigger}.TriggerValue()
	require.NoError(t, err)
	assert.Equal(t, flow.TriggerSet, trig)

	ign, err := Rule{Action: ActionIgnore}.TriggerValue()
	require.NoError(t, err)
	assert.Equal(t, flow.TriggerIgnore, ign)

	_, err = Rule{Action: "delete"}.TriggerValue()
	assert.Error(t, err)
}
