package sqlinline

const QSelectIntegrationToken = `--sql 4a6d20c9-8e5b-4f17-a3d2-0c91b64e78f5
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql d18f36b2-05ca-49e7-b641-73a8d2c90e16
insert into integration_tokens(provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, $3::jsonb, now(), now())
on conflict (provider)
do update set token = excluded.token, properties = excluded.properties, updated_at = now();
`
