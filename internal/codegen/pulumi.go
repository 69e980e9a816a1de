package codegen

import (
	"fmt"
	"strings"

	"github.com/infrax/infra-engine/internal/types"
)

// Pulumi output is Python program text, matching the dashboard's download
// expectations. Same assembly style as the Terraform builders: fixed
// header, one block per resolved service.

func awsPulumi(selection *types.ServiceSelection, environment, projectName string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`"""Pulumi program for %s (%s)."""

import pulumi
import pulumi_aws as aws

config = pulumi.Config()
environment = config.get("environment") or %q
project_name = config.get("project_name") or %q

common_tags = {
    "Environment": environment,
    "Project": project_name,
    "ManagedBy": "pulumi",
}
`, projectName, selection.Region, environment, projectName))

	names := nameCounter{}
	for _, svc := range selection.Services {
		name := names.next(svc.Category)
		switch svc.Category {
		case types.CategoryCompute:
			b.WriteString(fmt.Sprintf(`
%s = aws.ec2.Instance(
    "%s",
    ami=aws.ec2.get_ami(
        most_recent=True,
        owners=["amazon"],
        filters=[{"name": "name", "values": ["al2023-ami-*-x86_64"]}],
    ).id,
    instance_type=%q,
    root_block_device={"encrypted": True},
    tags=common_tags,
)
`, name, name, svc.Attributes["instance_type"]))
		case types.CategoryStorage:
			b.WriteString(fmt.Sprintf(`
%s = aws.s3.Bucket(
    "%s",
    server_side_encryption_configuration={
        "rule": {
            "apply_server_side_encryption_by_default": {"sse_algorithm": "aws:kms"}
        }
    },
    tags=common_tags,
)
`, name, name))
		case types.CategoryDatabase:
			b.WriteString(fmt.Sprintf(`
%s = aws.rds.Instance(
    "%s",
    engine=%q,
    instance_class=%q,
    allocated_storage=20,
    storage_encrypted=True,
    backup_retention_period=7,
    skip_final_snapshot=True,
    username="dbadmin",
    manage_master_user_password=True,
    tags=common_tags,
)
`, name, name, svc.Attributes["engine"], svc.Attributes["instance_class"]))
		case types.CategoryNetworking:
			b.WriteString(fmt.Sprintf(`
%s = aws.ec2.Vpc(
    "%s",
    cidr_block=%q,
    enable_dns_support=True,
    enable_dns_hostnames=True,
    tags=common_tags,
)
`, name, name, svc.Attributes["cidr_block"]))
		case types.CategoryContainer:
			b.WriteString(fmt.Sprintf(`
%s_cluster = aws.ecs.Cluster("%s-cluster", tags=common_tags)

%s = aws.ecs.Service(
    "%s",
    cluster=%s_cluster.id,
    desired_count=1,
    launch_type="FARGATE",
)
`, name, name, name, name, name))
		}
	}

	return b.String()
}

func azurePulumi(selection *types.ServiceSelection, environment, projectName string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`"""Pulumi program for %s (%s)."""

import pulumi
import pulumi_azure_native as azure

config = pulumi.Config()
environment = config.get("environment") or %q
project_name = config.get("project_name") or %q

common_tags = {
    "Environment": environment,
    "Project": project_name,
    "ManagedBy": "pulumi",
}

resource_group = azure.resources.ResourceGroup(
    "main",
    location=%q,
    tags=common_tags,
)
`, projectName, selection.Region, environment, projectName, selection.Region))

	names := nameCounter{}
	for _, svc := range selection.Services {
		name := names.next(svc.Category)
		switch svc.Category {
		case types.CategoryCompute:
			b.WriteString(fmt.Sprintf(`
%s = azure.compute.VirtualMachine(
    "%s",
    resource_group_name=resource_group.name,
    hardware_profile={"vm_size": %q},
    tags=common_tags,
)
`, name, name, svc.Attributes["vm_size"]))
		case types.CategoryStorage:
			b.WriteString(fmt.Sprintf(`
%s = azure.storage.StorageAccount(
    "%s",
    resource_group_name=resource_group.name,
    sku={"name": "Standard_LRS"},
    kind="StorageV2",
    minimum_tls_version="TLS1_2",
    tags=common_tags,
)
`, name, name))
		case types.CategoryDatabase:
			b.WriteString(fmt.Sprintf(`
%s = azure.dbforpostgresql.Server(
    "%s",
    resource_group_name=resource_group.name,
    sku={"name": %q},
    version="15",
    tags=common_tags,
)
`, name, name, svc.Attributes["instance_class"]))
		case types.CategoryNetworking:
			b.WriteString(fmt.Sprintf(`
%s = azure.network.VirtualNetwork(
    "%s",
    resource_group_name=resource_group.name,
    address_space={"address_prefixes": [%q]},
    tags=common_tags,
)
`, name, name, svc.Attributes["cidr_block"]))
		case types.CategoryContainer:
			b.WriteString(fmt.Sprintf(`
%s = azure.containerservice.ManagedCluster(
    "%s",
    resource_group_name=resource_group.name,
    agent_pool_profiles=[{"name": "default", "count": %s, "vm_size": "Standard_B2s", "mode": "System"}],
    dns_prefix=project_name,
    tags=common_tags,
)
`, name, name, svc.Attributes["node_count"]))
		}
	}

	return b.String()
}

func gcpPulumi(selection *types.ServiceSelection, environment, projectName string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`"""Pulumi program for %s (%s)."""

import pulumi
import pulumi_gcp as gcp

config = pulumi.Config()
environment = config.get("environment") or %q
project_name = config.get("project_name") or %q

common_labels = {
    "environment": environment,
    "project": project_name,
    "managed_by": "pulumi",
}
`, projectName, selection.Region, environment, projectName))

	names := nameCounter{}
	for _, svc := range selection.Services {
		name := names.next(svc.Category)
		switch svc.Category {
		case types.CategoryCompute:
			b.WriteString(fmt.Sprintf(`
%s = gcp.compute.Instance(
    "%s",
    machine_type=%q,
    zone=%q,
    boot_disk={"initialize_params": {"image": "debian-cloud/debian-12"}},
    network_interfaces=[{"network": "default"}],
    labels=common_labels,
)
`, name, name, svc.Attributes["instance_type"], selection.Region+"-a"))
		case types.CategoryStorage:
			b.WriteString(fmt.Sprintf(`
%s = gcp.storage.Bucket(
    "%s",
    location=%q,
    storage_class=%q,
    uniform_bucket_level_access=True,
    versioning={"enabled": True},
    labels=common_labels,
)
`, name, name, selection.Region, svc.Attributes["storage_class"]))
		case types.CategoryDatabase:
			b.WriteString(fmt.Sprintf(`
%s = gcp.sql.DatabaseInstance(
    "%s",
    database_version=%q,
    region=%q,
    settings={"tier": %q, "backup_configuration": {"enabled": True}},
)
`, name, name, svc.Attributes["engine"], selection.Region, svc.Attributes["instance_class"]))
		case types.CategoryNetworking:
			b.WriteString(fmt.Sprintf(`
%s = gcp.compute.Network(
    "%s",
    auto_create_subnetworks=False,
)
`, name, name))
		case types.CategoryContainer:
			b.WriteString(fmt.Sprintf(`
%s = gcp.container.Cluster(
    "%s",
    location=%q,
    initial_node_count=%s,
    resource_labels=common_labels,
)
`, name, name, selection.Region, svc.Attributes["node_count"]))
		}
	}

	return b.String()
}
